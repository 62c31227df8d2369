package accessrequest

import (
	"time"

	"github.com/harborops/attendance-management/internal"
	"github.com/harborops/attendance-management/internal/geo"
)

// AccessRequest is a worker-submitted appeal to clock in from a disallowed
// location, awaiting human review. Approval is an audit decision; it does not
// retry the clock-in or grant a standing override.
type AccessRequest struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"column:user_id;not null"`
	Latitude    float64    `json:"latitude" gorm:"not null"`
	Longitude   float64    `json:"longitude" gorm:"not null"`
	Address     string     `json:"address"`
	Reason      string     `json:"reason" gorm:"not null"`
	Status      string     `json:"status" gorm:"default:pending"`
	RequestedAt time.Time  `json:"requested_at" gorm:"column:requested_at;default:now()"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
}

// TableName returns the table name for GORM
func (AccessRequest) TableName() string {
	return "access_requests"
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func (r *AccessRequest) CanBeReviewed() bool {
	return r.Status == StatusPending
}

func (r *AccessRequest) RequestedLocation() geo.Coordinate {
	return geo.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// ReviewDTO represents the reviewer's decision
type ReviewDTO struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

// Validate validates the ReviewDTO
func (dto ReviewDTO) Validate() error {
	if dto.Decision != StatusApproved && dto.Decision != StatusRejected {
		return internal.NewValidationError("decision must be either 'approved' or 'rejected'", internal.ErrCodeInvalidDecision)
	}
	return nil
}

// Domain errors
var (
	ErrRequestNotFound = internal.NewNotFoundError("Access request not found", internal.ErrCodeRequestNotFound)
	ErrAlreadyReviewed = internal.NewConflictError("access request has already been reviewed", internal.ErrCodeAlreadyReviewed)
	ErrInvalidReason   = internal.NewValidationError("reason is required", internal.ErrCodeInvalidReason)
)
