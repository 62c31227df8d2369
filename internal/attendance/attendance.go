package attendance

import (
	"time"

	"github.com/harborops/attendance-management/internal"
	"github.com/harborops/attendance-management/internal/geo"
	"github.com/harborops/attendance-management/internal/geolocation"
)

// Session is one timed work period. At most one session per user may be open
// at any instant; the ledger's storage layer enforces that, not this struct.
type Session struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"column:user_id;not null"`
	ClockIn           time.Time  `json:"clock_in" gorm:"column:clock_in;not null"`
	ClockInLatitude   float64    `json:"clock_in_latitude" gorm:"column:clock_in_latitude"`
	ClockInLongitude  float64    `json:"clock_in_longitude" gorm:"column:clock_in_longitude"`
	ClockInAddress    string     `json:"clock_in_address" gorm:"column:clock_in_address"`
	ClockOut          *time.Time `json:"clock_out,omitempty" gorm:"column:clock_out"`
	ClockOutLatitude  *float64   `json:"clock_out_latitude,omitempty" gorm:"column:clock_out_latitude"`
	ClockOutLongitude *float64   `json:"clock_out_longitude,omitempty" gorm:"column:clock_out_longitude"`
	ClockOutAddress   *string    `json:"clock_out_address,omitempty" gorm:"column:clock_out_address"`
	Status            string     `json:"status" gorm:"default:open"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

// TableName returns the table name for GORM
func (Session) TableName() string {
	return "attendance_sessions"
}

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

func (s *Session) IsOpen() bool {
	return s.Status == StatusOpen
}

func (s *Session) ClockInLocation() geo.Coordinate {
	return geo.Coordinate{Latitude: s.ClockInLatitude, Longitude: s.ClockInLongitude}
}

// Elapsed is the session length so far, or the final length once closed.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.ClockOut != nil {
		return s.ClockOut.Sub(s.ClockIn)
	}
	return now.Sub(s.ClockIn)
}

// DenialLocationNotAllowed marks a clock-in refused by the admission check.
const DenialLocationNotAllowed = "location_not_allowed"

// ClockInResult is the outcome of a clock-in attempt. A geofence denial is a
// business outcome, not an error: Allowed is false and the denial fields
// guide the worker toward the access request path.
type ClockInResult struct {
	Allowed        bool     `json:"allowed"`
	Session        *Session `json:"session,omitempty"`
	DenialReason   string   `json:"denial_reason,omitempty"`
	NearestFence   string   `json:"nearest_fence,omitempty"`
	DistanceMeters float64  `json:"distance_meters,omitempty"`
}

// OpenSessionView decorates an open session with its elapsed duration for
// the admin dashboard.
type OpenSessionView struct {
	*Session
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// PositionDTO is the device fix shipped inside clock-in/clock-out payloads.
// Absent coordinates mean the device could not obtain one.
type PositionDTO struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	AccuracyMeters float64  `json:"accuracy_meters"`
}

// Fix converts the payload into a provider-consumable position, nil when the
// device reported nothing.
func (dto PositionDTO) Fix() *geolocation.Position {
	if dto.Latitude == nil || dto.Longitude == nil {
		return nil
	}
	fix := &geolocation.Position{AccuracyMeters: dto.AccuracyMeters}
	fix.Latitude = *dto.Latitude
	fix.Longitude = *dto.Longitude
	return fix
}

// ClockDTO represents clock-in and clock-out payloads
type ClockDTO struct {
	Position PositionDTO `json:"position"`
}

// RequestAccessDTO represents the payload for appealing a denied location
type RequestAccessDTO struct {
	Position PositionDTO `json:"position"`
	Reason   string      `json:"reason" validate:"required"`
}

// Domain errors
var (
	ErrAlreadyClockedIn     = internal.NewConflictError("an open session already exists for this user", internal.ErrCodeAlreadyClockedIn)
	ErrNoOpenSession        = internal.NewNotFoundError("no open session for this user", internal.ErrCodeNoOpenSession)
	ErrSessionNotFound      = internal.NewNotFoundError("Session not found", internal.ErrCodeSessionNotFound)
	ErrSessionAlreadyClosed = internal.NewConflictError("session is already closed", internal.ErrCodeSessionAlreadyClosed)
)
