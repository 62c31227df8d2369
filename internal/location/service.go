package location

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository interface defines the data access methods for geofences
type Repository interface {
	Create(fence *GeoFence) error
	GetByID(id string) (*GeoFence, error)
	GetAll() ([]*GeoFence, error)
	GetActive() ([]*GeoFence, error)
	UpdateActive(id string, isActive bool) error
}

// Service handles geofence registry business logic
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateFence registers a new work site. New fences start active.
func (s *Service) CreateFence(dto CreateGeoFenceDTO) (*GeoFence, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("geofence validation failed", "error", err, "name", dto.Name)
		return nil, err
	}

	radius := dto.RadiusMeters
	if radius == 0 {
		radius = DefaultRadiusMeters
	}

	fence := &GeoFence{
		ID:           uuid.NewString(),
		Name:         dto.Name,
		Address:      dto.Address,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		RadiusMeters: radius,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(fence); err != nil {
		s.logger.Error("failed to create geofence", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("geofence created",
		"fence_id", fence.ID,
		"name", fence.Name,
		"radius_meters", fence.RadiusMeters)

	return fence, nil
}

// ListActive returns the fences clock-ins are currently admitted from.
func (s *Service) ListActive() ([]*GeoFence, error) {
	fences, err := s.repo.GetActive()
	if err != nil {
		s.logger.Error("failed to list active geofences", "error", err)
		return nil, err
	}
	return fences, nil
}

// ListAll returns every fence including deactivated ones, for the admin view.
func (s *Service) ListAll() ([]*GeoFence, error) {
	fences, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list geofences", "error", err)
		return nil, err
	}
	return fences, nil
}

// SetActive toggles a fence. Re-setting the current value is a no-op success.
func (s *Service) SetActive(id string, isActive bool) (*GeoFence, error) {
	fence, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("geofence not found for toggle", "error", err, "fence_id", id)
		return nil, ErrFenceNotFound
	}

	if fence.IsActive == isActive {
		return fence, nil
	}

	if err := s.repo.UpdateActive(id, isActive); err != nil {
		s.logger.Error("failed to update geofence status", "error", err, "fence_id", id)
		return nil, err
	}

	fence.IsActive = isActive
	s.logger.Info("geofence status updated",
		"fence_id", id,
		"name", fence.Name,
		"is_active", isActive)

	return fence, nil
}
