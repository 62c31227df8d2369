package permission

import "time"

// LocationPermission grants a user unconditional clock-in rights, bypassing
// the geofence check entirely. At most one row per user.
type LocationPermission struct {
	ID                  string    `json:"id" gorm:"primaryKey"`
	UserID              string    `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	CanClockInAnywhere  bool      `json:"can_clock_in_anywhere" gorm:"column:can_clock_in_anywhere;default:false"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

// TableName returns the table name for GORM
func (LocationPermission) TableName() string {
	return "location_permissions"
}

// SetPermissionDTO represents the request for granting or revoking the
// anywhere override for a user
type SetPermissionDTO struct {
	UserID             string `json:"user_id" validate:"required"`
	CanClockInAnywhere bool   `json:"can_clock_in_anywhere"`
}
