package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/permission"
)

// PermissionRepository implements the permission.Repository interface using GORM
type PermissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new override repository
func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetByUserID(userID string) (*permission.LocationPermission, error) {
	var perm permission.LocationPermission
	err := r.db.Where("user_id = ?", userID).First(&perm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

// Replace deletes any existing row for the user and inserts the new one in a
// single transaction. Rollback on failure keeps the prior grant intact.
func (r *PermissionRepository) Replace(perm *permission.LocationPermission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", perm.UserID).
			Delete(&permission.LocationPermission{}).Error; err != nil {
			return err
		}

		if perm.ID == "" {
			perm.ID = uuid.NewString()
		}
		perm.CreatedAt = time.Now()

		return tx.Create(perm).Error
	})
}
