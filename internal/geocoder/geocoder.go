package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/harborops/attendance-management/internal/geo"
)

// AddressResolver turns a coordinate into a display address. Consumers treat
// it as best-effort: Resolve never fails, it falls back to formatting the raw
// coordinates when the upstream service cannot answer.
type AddressResolver interface {
	Resolve(ctx context.Context, coordinate geo.Coordinate) string
}

// Client calls a Nominatim-style reverse geocoding endpoint.
type Client struct {
	baseURL        string
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Client{
		baseURL:        config.BaseURL,
		requestTimeout: timeout,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Resolve returns a human-readable address for the coordinate, or the
// formatted raw coordinates when the geocoder is unreachable or answers
// with nothing usable.
func (c *Client) Resolve(ctx context.Context, coordinate geo.Coordinate) string {
	fallback := FallbackAddress(coordinate)

	if c.baseURL == "" {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", coordinate.Latitude))
	query.Set("lon", fmt.Sprintf("%f", coordinate.Longitude))
	query.Set("format", "json")

	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("geocoder: failed to build request", "error", err)
		return fallback
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("geocoder: reverse lookup failed, using raw coordinates", "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("geocoder: unexpected status, using raw coordinates", "status", resp.StatusCode)
		return fallback
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("geocoder: failed to decode response, using raw coordinates", "error", err)
		return fallback
	}

	if body.DisplayName == "" {
		return fallback
	}

	return body.DisplayName
}

// FallbackAddress formats the raw coordinates the way the clock-in UI shows
// them when no geocoder is available.
func FallbackAddress(coordinate geo.Coordinate) string {
	return fmt.Sprintf("Location: %.4f, %.4f", coordinate.Latitude, coordinate.Longitude)
}
