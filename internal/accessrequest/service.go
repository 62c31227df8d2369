package accessrequest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborops/attendance-management/internal/core/events"
)

// Repository interface defines the data access methods for access requests
type Repository interface {
	Create(request *AccessRequest) error
	GetByID(id string) (*AccessRequest, error)
	GetPending(limit, offset int) ([]*AccessRequest, error)
	// MarkReviewed transitions a pending request to the decision state and
	// stamps the reviewer. It must only touch rows still pending and report
	// whether one was updated.
	MarkReviewed(id, reviewerID, decision string, reviewedAt time.Time) (bool, error)
}

// Service handles the access request queue
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Submit queues a request for review. Requests always start pending.
func (s *Service) Submit(userID string, latitude, longitude float64, address, reason string) (*AccessRequest, error) {
	if strings.TrimSpace(reason) == "" {
		s.logger.Warn("access request rejected: empty reason", "user_id", userID)
		return nil, ErrInvalidReason
	}

	request := &AccessRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Latitude:    latitude,
		Longitude:   longitude,
		Address:     address,
		Reason:      reason,
		Status:      StatusPending,
		RequestedAt: time.Now(),
	}

	if err := s.repo.Create(request); err != nil {
		s.logger.Error("failed to create access request", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("access request submitted",
		"request_id", request.ID,
		"user_id", userID,
		"reason", reason)

	return request, nil
}

// ListPending returns requests awaiting adjudication, oldest first.
func (s *Service) ListPending(limit, offset int) ([]*AccessRequest, error) {
	requests, err := s.repo.GetPending(limit, offset)
	if err != nil {
		s.logger.Error("failed to list pending access requests", "error", err)
		return nil, err
	}
	return requests, nil
}

// Review transitions a pending request to its terminal state exactly once.
// A second review attempt fails with ErrAlreadyReviewed, preserving the
// original decision, reviewer and timestamp.
func (s *Service) Review(requestID, reviewerID string, dto ReviewDTO) (*AccessRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("review validation failed", "error", err, "request_id", requestID)
		return nil, err
	}

	request, err := s.repo.GetByID(requestID)
	if err != nil {
		s.logger.Error("access request not found for review", "error", err, "request_id", requestID)
		return nil, ErrRequestNotFound
	}

	if !request.CanBeReviewed() {
		s.logger.Warn("cannot review access request in current status",
			"request_id", requestID,
			"current_status", request.Status)
		return nil, ErrAlreadyReviewed
	}

	reviewedAt := time.Now()
	updated, err := s.repo.MarkReviewed(requestID, reviewerID, dto.Decision, reviewedAt)
	if err != nil {
		s.logger.Error("failed to mark access request reviewed", "error", err, "request_id", requestID)
		return nil, err
	}
	if !updated {
		// lost the race against a concurrent reviewer
		s.logger.Warn("access request reviewed concurrently", "request_id", requestID)
		return nil, ErrAlreadyReviewed
	}

	request.Status = dto.Decision
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &reviewedAt

	s.logger.Info("access request reviewed",
		"request_id", requestID,
		"reviewer_id", reviewerID,
		"decision", dto.Decision)

	s.bus.Publish(context.Background(), events.NewAccessRequestReviewedEvent(requestID, reviewerID, dto.Decision))

	return request, nil
}
