package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/attendance"
)

// SessionRepository implements the attendance.Repository interface using GORM.
// The one-open-session-per-user invariant lives in the partial unique index
// on (user_id) WHERE status = 'open'; Create surfaces a violation as
// gorm.ErrDuplicatedKey for the service to translate.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new ledger repository
func NewSessionRepository(db *gorm.DB) attendance.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *attendance.Session) error {
	return r.db.Create(session).Error
}

func (r *SessionRepository) GetByID(id string) (*attendance.Session, error) {
	var session attendance.Session
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, attendance.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetOpenSession(userID string) (*attendance.Session, error) {
	var session attendance.Session
	err := r.db.Where("user_id = ? AND status = ?", userID, attendance.StatusOpen).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetOpenSessions(limit, offset int) ([]*attendance.Session, error) {
	var sessions []*attendance.Session
	err := r.db.Where("status = ?", attendance.StatusOpen).
		Order("clock_in DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

// Close guards the open->closed transition in the WHERE clause so a session
// cannot be closed twice.
func (r *SessionRepository) Close(id string, latitude, longitude float64, address string, closedAt time.Time) (bool, error) {
	result := r.db.Model(&attendance.Session{}).
		Where("id = ? AND status = ?", id, attendance.StatusOpen).
		Updates(map[string]interface{}{
			"status":              attendance.StatusClosed,
			"clock_out":           closedAt,
			"clock_out_latitude":  latitude,
			"clock_out_longitude": longitude,
			"clock_out_address":   address,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
