package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DeviceGateway asks an external device-location service for the caller's
// current fix. It enforces the configured timeout itself; callers see either
// a position, ErrPositionTimeout or ErrPositionUnavailable.
type DeviceGateway struct {
	baseURL        string
	fixTimeout     time.Duration
	maxPositionAge time.Duration
	highAccuracy   bool
	httpClient     *http.Client
	logger         *slog.Logger
}

type GatewayConfig struct {
	BaseURL        string
	FixTimeout     time.Duration
	MaxPositionAge time.Duration
	HighAccuracy   bool
}

func NewDeviceGateway(config GatewayConfig, logger *slog.Logger) *DeviceGateway {
	fixTimeout := config.FixTimeout
	if fixTimeout <= 0 {
		fixTimeout = 10 * time.Second
	}

	maxAge := config.MaxPositionAge
	if maxAge <= 0 {
		maxAge = time.Minute
	}

	return &DeviceGateway{
		baseURL:        config.BaseURL,
		fixTimeout:     fixTimeout,
		maxPositionAge: maxAge,
		highAccuracy:   config.HighAccuracy,
		httpClient:     &http.Client{Timeout: fixTimeout},
		logger:         logger,
	}
}

type gatewayResponse struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	FixedAt        time.Time `json:"fixed_at"`
	Available      bool      `json:"available"`
}

func (g *DeviceGateway) CurrentPosition(ctx context.Context) (Position, error) {
	if g.baseURL == "" {
		return Position{}, ErrPositionUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, g.fixTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/position?max_age_ms=%d&high_accuracy=%t",
		g.baseURL, g.maxPositionAge.Milliseconds(), g.highAccuracy)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		g.logger.Error("device gateway: failed to build request", "error", err)
		return Position{}, ErrPositionUnavailable
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			g.logger.Warn("device gateway: position request timed out", "timeout", g.fixTimeout)
			return Position{}, ErrPositionTimeout
		}
		g.logger.Error("device gateway: position request failed", "error", err)
		return Position{}, ErrPositionUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("device gateway: unexpected status", "status", resp.StatusCode)
		return Position{}, ErrPositionUnavailable
	}

	var body gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		g.logger.Error("device gateway: failed to decode response", "error", err)
		return Position{}, ErrPositionUnavailable
	}

	if !body.Available {
		return Position{}, ErrPositionUnavailable
	}

	// stale fixes are no better than none
	if g.maxPositionAge > 0 && !body.FixedAt.IsZero() && time.Since(body.FixedAt) > g.maxPositionAge {
		g.logger.Warn("device gateway: fix too old", "fixed_at", body.FixedAt, "max_age", g.maxPositionAge)
		return Position{}, ErrPositionUnavailable
	}

	position := Position{
		AccuracyMeters: body.AccuracyMeters,
	}
	position.Latitude = body.Latitude
	position.Longitude = body.Longitude

	if err := position.Validate(); err != nil {
		g.logger.Error("device gateway: invalid coordinates in response", "error", err)
		return Position{}, ErrPositionUnavailable
	}

	return position, nil
}

func isTimeout(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Timeout()
	}
	return false
}
