package postgres

import (
	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/location"
)

// GeoFenceRepository implements the location.Repository interface using GORM
type GeoFenceRepository struct {
	db *gorm.DB
}

// NewGeoFenceRepository creates a new geofence repository
func NewGeoFenceRepository(db *gorm.DB) location.Repository {
	return &GeoFenceRepository{db: db}
}

func (r *GeoFenceRepository) Create(fence *location.GeoFence) error {
	return r.db.Create(fence).Error
}

func (r *GeoFenceRepository) GetByID(id string) (*location.GeoFence, error) {
	var fence location.GeoFence
	err := r.db.Where("id = ?", id).First(&fence).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, location.ErrFenceNotFound
		}
		return nil, err
	}
	return &fence, nil
}

func (r *GeoFenceRepository) GetAll() ([]*location.GeoFence, error) {
	var fences []*location.GeoFence
	err := r.db.Order("name ASC").Find(&fences).Error
	return fences, err
}

func (r *GeoFenceRepository) GetActive() ([]*location.GeoFence, error) {
	var fences []*location.GeoFence
	err := r.db.Where("is_active = ?", true).
		Order("name ASC").
		Find(&fences).Error
	return fences, err
}

func (r *GeoFenceRepository) UpdateActive(id string, isActive bool) error {
	return r.db.Model(&location.GeoFence{}).
		Where("id = ?", id).
		Update("is_active", isActive).Error
}
