package location

import (
	"time"

	"github.com/harborops/attendance-management/internal"
	"github.com/harborops/attendance-management/internal/geo"
)

// GeoFence is a named circular region clock-ins are permitted from.
// Fences are never deleted; deactivation preserves the audit trail of
// historical clock-in decisions.
type GeoFence struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude" gorm:"not null"`
	Longitude    float64   `json:"longitude" gorm:"not null"`
	RadiusMeters float64   `json:"radius_meters" gorm:"column:radius_meters;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

// TableName returns the table name for GORM
func (GeoFence) TableName() string {
	return "geofences"
}

func (f *GeoFence) Center() geo.Coordinate {
	return geo.Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
}

// Contains reports whether the coordinate falls inside the fence radius.
func (f *GeoFence) Contains(c geo.Coordinate) bool {
	return geo.DistanceMeters(c, f.Center()) <= f.RadiusMeters
}

// DefaultRadiusMeters matches the admin dialog default for new sites.
const DefaultRadiusMeters = 100.0

// CreateGeoFenceDTO represents the request payload for registering a work site
type CreateGeoFenceDTO struct {
	Name         string  `json:"name" validate:"required"`
	Address      string  `json:"address"`
	Latitude     float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude    float64 `json:"longitude" validate:"required,min=-180,max=180"`
	RadiusMeters float64 `json:"radius_meters"`
}

// Validate validates the CreateGeoFenceDTO
func (dto CreateGeoFenceDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	center := geo.Coordinate{Latitude: dto.Latitude, Longitude: dto.Longitude}
	if err := center.Validate(); err != nil {
		return internal.NewValidationFieldError("latitude", err.Error(), internal.ErrCodeInvalidCoordinate)
	}
	if dto.RadiusMeters < 0 {
		return internal.NewValidationFieldError("radius_meters", "radius must be greater than 0", internal.ErrCodeInvalidRadius)
	}
	return nil
}

// SetActiveDTO represents the request for toggling a fence
type SetActiveDTO struct {
	IsActive bool `json:"is_active"`
}

var ErrFenceNotFound = internal.NewNotFoundError("Geofence not found", internal.ErrCodeFenceNotFound)
