package geolocation

import (
	"context"

	"github.com/harborops/attendance-management/internal"
	"github.com/harborops/attendance-management/internal/geo"
)

// Position is a single location fix.
type Position struct {
	geo.Coordinate
	AccuracyMeters float64 `json:"accuracy_meters"`
}

// PositionProvider obtains the caller's current position. Single shot,
// no internal retries; retry policy belongs to the caller.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

var (
	ErrPositionUnavailable = internal.NewUnavailableError("position unavailable: location services disabled or no fix reported", internal.ErrCodePositionUnavailable)
	ErrPositionTimeout     = internal.NewTimeoutError("position request timed out", internal.ErrCodePositionTimeout)
)
