package permission

import (
	"log/slog"

	"github.com/harborops/attendance-management/internal"
)

// Repository interface defines the data access methods for overrides
type Repository interface {
	GetByUserID(userID string) (*LocationPermission, error)
	Replace(permission *LocationPermission) error
}

// Service handles per-user override business logic
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

// CanClockInAnywhere reports the user's override. Absence of a record means
// no override.
func (s *Service) CanClockInAnywhere(userID string) (bool, error) {
	permission, err := s.repo.GetByUserID(userID)
	if err != nil {
		s.logger.Error("failed to look up location permission", "error", err, "user_id", userID)
		return false, err
	}
	if permission == nil {
		return false, nil
	}
	return permission.CanClockInAnywhere, nil
}

// SetOverride upserts the user's override flag: exactly one row per user
// after the call, regardless of prior state. A failed write leaves the prior
// state intact.
func (s *Service) SetOverride(dto SetPermissionDTO) (*LocationPermission, error) {
	if dto.UserID == "" {
		return nil, internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeValidationFailed)
	}

	permission := &LocationPermission{
		UserID:             dto.UserID,
		CanClockInAnywhere: dto.CanClockInAnywhere,
	}

	if err := s.repo.Replace(permission); err != nil {
		s.logger.Error("failed to replace location permission", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("location permission updated",
		"user_id", dto.UserID,
		"can_clock_in_anywhere", dto.CanClockInAnywhere)

	return permission, nil
}
