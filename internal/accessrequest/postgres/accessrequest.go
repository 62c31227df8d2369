package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/accessrequest"
)

// AccessRequestRepository implements the accessrequest.Repository interface using GORM
type AccessRequestRepository struct {
	db *gorm.DB
}

// NewAccessRequestRepository creates a new access request repository
func NewAccessRequestRepository(db *gorm.DB) accessrequest.Repository {
	return &AccessRequestRepository{db: db}
}

func (r *AccessRequestRepository) Create(request *accessrequest.AccessRequest) error {
	return r.db.Create(request).Error
}

func (r *AccessRequestRepository) GetByID(id string) (*accessrequest.AccessRequest, error) {
	var request accessrequest.AccessRequest
	err := r.db.Where("id = ?", id).First(&request).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, accessrequest.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *AccessRequestRepository) GetPending(limit, offset int) ([]*accessrequest.AccessRequest, error) {
	var requests []*accessrequest.AccessRequest
	err := r.db.Where("status = ?", accessrequest.StatusPending).
		Order("requested_at ASC"). // FIFO for reviewers
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

// MarkReviewed guards the pending->terminal transition in the WHERE clause so
// a concurrent reviewer cannot overwrite an earlier decision.
func (r *AccessRequestRepository) MarkReviewed(id, reviewerID, decision string, reviewedAt time.Time) (bool, error) {
	result := r.db.Model(&accessrequest.AccessRequest{}).
		Where("id = ? AND status = ?", id, accessrequest.StatusPending).
		Updates(map[string]interface{}{
			"status":      decision,
			"reviewed_by": reviewerID,
			"reviewed_at": reviewedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
