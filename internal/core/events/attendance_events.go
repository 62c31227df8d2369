package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionOpenedEvent          = "attendance.session_opened"
	SessionClosedEvent          = "attendance.session_closed"
	ClockInDeniedEvent          = "attendance.clock_in_denied"
	AccessRequestSubmittedEvent = "attendance.access_request_submitted"
	AccessRequestReviewedEvent  = "attendance.access_request_reviewed"
)

func NewSessionOpenedEvent(sessionID, userID, address string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      SessionOpenedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"address":    address,
		},
	}
}

func NewSessionClosedEvent(sessionID, userID string, duration time.Duration) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      SessionClosedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id":       sessionID,
			"user_id":          userID,
			"duration_seconds": int64(duration.Seconds()),
		},
	}
}

func NewClockInDeniedEvent(userID string, distanceMeters float64) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      ClockInDeniedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":         userID,
			"distance_meters": distanceMeters,
		},
	}
}

func NewAccessRequestSubmittedEvent(requestID, userID, reason string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      AccessRequestSubmittedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"request_id": requestID,
			"user_id":    userID,
			"reason":     reason,
		},
	}
}

func NewAccessRequestReviewedEvent(requestID, reviewerID, decision string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      AccessRequestReviewedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"request_id":  requestID,
			"reviewer_id": reviewerID,
			"decision":    decision,
		},
	}
}
