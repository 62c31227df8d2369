package attendance

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/accessrequest"
	"github.com/harborops/attendance-management/internal/core/events"
	"github.com/harborops/attendance-management/internal/geo"
	"github.com/harborops/attendance-management/internal/geocoder"
	"github.com/harborops/attendance-management/internal/geolocation"
	"github.com/harborops/attendance-management/internal/location"
)

// Repository interface defines the data access methods for the ledger
type Repository interface {
	Create(session *Session) error
	GetByID(id string) (*Session, error)
	GetOpenSession(userID string) (*Session, error)
	GetOpenSessions(limit, offset int) ([]*Session, error)
	// Close stamps the clock-out on a still-open session and reports whether
	// a row transitioned. It must only touch rows with status open.
	Close(id string, latitude, longitude float64, address string, closedAt time.Time) (bool, error)
}

// FenceSource is the slice of the location registry the orchestrator needs.
type FenceSource interface {
	ListActive() ([]*location.GeoFence, error)
}

// OverrideSource is the slice of the permission store the orchestrator needs.
type OverrideSource interface {
	CanClockInAnywhere(userID string) (bool, error)
}

// RequestQueue receives appeals for denied locations.
type RequestQueue interface {
	Submit(userID string, latitude, longitude float64, address, reason string) (*accessrequest.AccessRequest, error)
}

// Service orchestrates clock-in, clock-out and the access request path.
type Service struct {
	repo      Repository
	fences    FenceSource
	overrides OverrideSource
	requests  RequestQueue
	resolver  geocoder.AddressResolver
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	fences FenceSource,
	overrides OverrideSource,
	requests RequestQueue,
	resolver geocoder.AddressResolver,
	bus *events.EventBus,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		fences:    fences,
		overrides: overrides,
		requests:  requests,
		resolver:  resolver,
		bus:       bus,
		logger:    logger,
	}
}

// ClockIn opens a session for the user if the admission check passes.
//
// Order matters: the open session check is first so a double clock-in is a
// cheap no-op; the position is fetched once; the override short-circuits the
// fence scan; a denial is returned as a result value, not an error. No
// ledger row changes unless every earlier step succeeded, and the partial
// unique index on open sessions closes the remaining race window.
func (s *Service) ClockIn(ctx context.Context, userID string, provider geolocation.PositionProvider) (*ClockInResult, error) {
	if existing, err := s.repo.GetOpenSession(userID); err != nil {
		s.logger.Error("failed to look up open session", "error", err, "user_id", userID)
		return nil, err
	} else if existing != nil {
		s.logger.Warn("clock-in refused: session already open",
			"user_id", userID,
			"session_id", existing.ID)
		return nil, ErrAlreadyClockedIn
	}

	position, err := provider.CurrentPosition(ctx)
	if err != nil {
		s.logger.Warn("clock-in aborted: no position", "error", err, "user_id", userID)
		return nil, err
	}

	allowed, nearest, distance, err := s.admit(userID, position.Coordinate)
	if err != nil {
		return nil, err
	}

	if !allowed {
		s.logger.Info("clock-in denied by admission check",
			"user_id", userID,
			"nearest_fence", nearest,
			"distance_meters", distance)

		s.bus.Publish(ctx, events.NewClockInDeniedEvent(userID, distance))

		return &ClockInResult{
			Allowed:        false,
			DenialReason:   DenialLocationNotAllowed,
			NearestFence:   nearest,
			DistanceMeters: distance,
		}, nil
	}

	address := s.resolver.Resolve(ctx, position.Coordinate)

	now := time.Now()
	session := &Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		ClockIn:          now,
		ClockInLatitude:  position.Latitude,
		ClockInLongitude: position.Longitude,
		ClockInAddress:   address,
		Status:           StatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// concurrent clock-in won the race
			s.logger.Warn("clock-in lost race to concurrent session", "user_id", userID)
			return nil, ErrAlreadyClockedIn
		}
		s.logger.Error("failed to open session", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("session opened",
		"session_id", session.ID,
		"user_id", userID,
		"address", address)

	s.bus.Publish(ctx, events.NewSessionOpenedEvent(session.ID, userID, address))

	return &ClockInResult{Allowed: true, Session: session}, nil
}

// ClockOut closes the user's open session. The admission check is not re-run;
// a worker may leave the site before ending their shift.
func (s *Service) ClockOut(ctx context.Context, userID string, provider geolocation.PositionProvider) (*Session, error) {
	session, err := s.repo.GetOpenSession(userID)
	if err != nil {
		s.logger.Error("failed to look up open session", "error", err, "user_id", userID)
		return nil, err
	}
	if session == nil {
		s.logger.Warn("clock-out refused: no open session", "user_id", userID)
		return nil, ErrNoOpenSession
	}

	position, err := provider.CurrentPosition(ctx)
	if err != nil {
		s.logger.Warn("clock-out aborted: no position", "error", err, "user_id", userID)
		return nil, err
	}

	address := s.resolver.Resolve(ctx, position.Coordinate)

	closedAt := time.Now()
	closed, err := s.repo.Close(session.ID, position.Latitude, position.Longitude, address, closedAt)
	if err != nil {
		s.logger.Error("failed to close session", "error", err, "session_id", session.ID)
		return nil, err
	}
	if !closed {
		// someone else closed it between our read and write
		current, lookupErr := s.repo.GetByID(session.ID)
		if lookupErr != nil {
			return nil, ErrSessionNotFound
		}
		if !current.IsOpen() {
			return nil, ErrSessionAlreadyClosed
		}
		return nil, ErrSessionNotFound
	}

	session.ClockOut = &closedAt
	session.ClockOutLatitude = &position.Latitude
	session.ClockOutLongitude = &position.Longitude
	session.ClockOutAddress = &address
	session.Status = StatusClosed

	s.logger.Info("session closed",
		"session_id", session.ID,
		"user_id", userID,
		"duration", session.Elapsed(closedAt).String())

	s.bus.Publish(ctx, events.NewSessionClosedEvent(session.ID, userID, session.Elapsed(closedAt)))

	return session, nil
}

// RequestLocationAccess files an appeal from the worker's current position.
// It is independent of any prior denied clock-in; the two are correlated by
// the reviewer, not by a stored link.
func (s *Service) RequestLocationAccess(ctx context.Context, userID, reason string, provider geolocation.PositionProvider) (*accessrequest.AccessRequest, error) {
	position, err := provider.CurrentPosition(ctx)
	if err != nil {
		s.logger.Warn("access request aborted: no position", "error", err, "user_id", userID)
		return nil, err
	}

	address := s.resolver.Resolve(ctx, position.Coordinate)

	request, err := s.requests.Submit(userID, position.Latitude, position.Longitude, address, reason)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewAccessRequestSubmittedEvent(request.ID, userID, reason))

	return request, nil
}

// CurrentSession returns the user's open session.
func (s *Service) CurrentSession(userID string) (*Session, error) {
	session, err := s.repo.GetOpenSession(userID)
	if err != nil {
		s.logger.Error("failed to look up open session", "error", err, "user_id", userID)
		return nil, err
	}
	if session == nil {
		return nil, ErrNoOpenSession
	}
	return session, nil
}

// ListOpenSessions returns currently-open sessions with elapsed durations,
// for the admin dashboard.
func (s *Service) ListOpenSessions(limit, offset int) ([]*OpenSessionView, error) {
	sessions, err := s.repo.GetOpenSessions(limit, offset)
	if err != nil {
		s.logger.Error("failed to list open sessions", "error", err)
		return nil, err
	}

	now := time.Now()
	views := make([]*OpenSessionView, len(sessions))
	for i, session := range sessions {
		views[i] = &OpenSessionView{
			Session:        session,
			ElapsedSeconds: int64(session.Elapsed(now).Seconds()),
		}
	}
	return views, nil
}

// admit runs the override-or-geofence test. The override short-circuits the
// fence scan entirely.
func (s *Service) admit(userID string, position geo.Coordinate) (allowed bool, nearestFence string, nearestDistance float64, err error) {
	anywhere, err := s.overrides.CanClockInAnywhere(userID)
	if err != nil {
		s.logger.Error("failed to check location override", "error", err, "user_id", userID)
		return false, "", 0, err
	}
	if anywhere {
		s.logger.Debug("clock-in admitted by anywhere override", "user_id", userID)
		return true, "", 0, nil
	}

	fences, err := s.fences.ListActive()
	if err != nil {
		s.logger.Error("failed to list active geofences", "error", err)
		return false, "", 0, err
	}

	nearestDistance = math.MaxFloat64
	for _, fence := range fences {
		distance := geo.DistanceMeters(position, fence.Center())
		if distance <= fence.RadiusMeters {
			return true, fence.Name, distance, nil
		}
		if distance < nearestDistance {
			nearestDistance = distance
			nearestFence = fence.Name
		}
	}

	if nearestFence == "" {
		nearestDistance = 0
	}
	return false, nearestFence, nearestDistance, nil
}
