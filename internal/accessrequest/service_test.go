package accessrequest_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/harborops/attendance-management/internal/accessrequest"
	"github.com/harborops/attendance-management/internal/core/events"
)

func TestAccessRequestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AccessRequest Service Suite")
}

// Mock repository for testing
type mockRequestRepository struct {
	requests         map[string]*accessrequest.AccessRequest
	createError      error
	getError         error
	markError        error
	markReviewedLost bool
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{
		requests: make(map[string]*accessrequest.AccessRequest),
	}
}

func (m *mockRequestRepository) Create(request *accessrequest.AccessRequest) error {
	if m.createError != nil {
		return m.createError
	}
	m.requests[request.ID] = request
	return nil
}

func (m *mockRequestRepository) GetByID(id string) (*accessrequest.AccessRequest, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	request, exists := m.requests[id]
	if !exists {
		return nil, errors.New("access request not found")
	}
	return request, nil
}

func (m *mockRequestRepository) GetPending(limit, offset int) ([]*accessrequest.AccessRequest, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	pending := make([]*accessrequest.AccessRequest, 0)
	for _, request := range m.requests {
		if request.CanBeReviewed() {
			pending = append(pending, request)
		}
	}
	start := offset
	end := offset + limit
	if start >= len(pending) {
		return []*accessrequest.AccessRequest{}, nil
	}
	if end > len(pending) {
		end = len(pending)
	}
	return pending[start:end], nil
}

func (m *mockRequestRepository) MarkReviewed(id, reviewerID, decision string, reviewedAt time.Time) (bool, error) {
	if m.markError != nil {
		return false, m.markError
	}
	if m.markReviewedLost {
		return false, nil
	}
	request, exists := m.requests[id]
	if !exists || !request.CanBeReviewed() {
		return false, nil
	}
	request.Status = decision
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &reviewedAt
	return true, nil
}

var _ = Describe("AccessRequestService", func() {
	var (
		service  *accessrequest.Service
		mockRepo *mockRequestRepository
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = newMockRequestRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = accessrequest.NewService(mockRepo, events.NewEventBus(logger), logger)
	})

	Describe("Submit", func() {
		It("should queue a pending request", func() {
			request, err := service.Submit("worker-1", 3.8480, 11.5021, "Quartier Bastos, Yaoundé", "Escorting cargo convoy inland")

			Expect(err).ToNot(HaveOccurred())
			Expect(request.ID).ToNot(BeEmpty())
			Expect(request.Status).To(Equal(accessrequest.StatusPending))
			Expect(request.ReviewedBy).To(BeNil())
			Expect(request.ReviewedAt).To(BeNil())
		})

		It("should reject an empty reason", func() {
			request, err := service.Submit("worker-1", 3.8480, 11.5021, "somewhere", "")

			Expect(request).To(BeNil())
			Expect(err).To(MatchError(accessrequest.ErrInvalidReason))
			Expect(mockRepo.requests).To(BeEmpty())
		})

		It("should reject a whitespace-only reason", func() {
			request, err := service.Submit("worker-1", 3.8480, 11.5021, "somewhere", "   \t ")

			Expect(request).To(BeNil())
			Expect(err).To(MatchError(accessrequest.ErrInvalidReason))
		})
	})

	Describe("ListPending", func() {
		It("should return only pending requests", func() {
			first, err := service.Submit("worker-1", 3.8, 11.5, "a", "reason one")
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Submit("worker-2", 3.9, 11.6, "b", "reason two")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Review(first.ID, "manager-1", accessrequest.ReviewDTO{Decision: accessrequest.StatusApproved})
			Expect(err).ToNot(HaveOccurred())

			pending, err := service.ListPending(20, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].UserID).To(Equal("worker-2"))
		})
	})

	Describe("Review", func() {
		var submitted *accessrequest.AccessRequest

		BeforeEach(func() {
			var err error
			submitted, err = service.Submit("worker-1", 3.8480, 11.5021, "Quartier Bastos, Yaoundé", "Escorting cargo convoy inland")
			Expect(err).ToNot(HaveOccurred())
		})

		It("should approve a pending request and stamp the reviewer", func() {
			reviewed, err := service.Review(submitted.ID, "manager-1", accessrequest.ReviewDTO{Decision: accessrequest.StatusApproved})

			Expect(err).ToNot(HaveOccurred())
			Expect(reviewed.Status).To(Equal(accessrequest.StatusApproved))
			Expect(*reviewed.ReviewedBy).To(Equal("manager-1"))
			Expect(reviewed.ReviewedAt).ToNot(BeNil())
		})

		It("should reject a pending request", func() {
			reviewed, err := service.Review(submitted.ID, "manager-1", accessrequest.ReviewDTO{Decision: accessrequest.StatusRejected})

			Expect(err).ToNot(HaveOccurred())
			Expect(reviewed.Status).To(Equal(accessrequest.StatusRejected))
		})

		It("should refuse an unknown decision", func() {
			reviewed, err := service.Review(submitted.ID, "manager-1", accessrequest.ReviewDTO{Decision: "maybe"})

			Expect(reviewed).To(BeNil())
			Expect(err).To(HaveOccurred())
		})

		It("should refuse a second review and keep the first decision", func() {
			_, err := service.Review(submitted.ID, "manager-1", accessrequest.ReviewDTO{Decision: accessrequest.StatusApproved})
			Expect(err).ToNot(HaveOccurred())

			reviewed, err := service.Review(submitted.ID, "manager-2", accessrequest.ReviewDTO{Decision: accessrequest.StatusRejected})
			Expect(reviewed).To(BeNil())
			Expect(err).To(MatchError(accessrequest.ErrAlreadyReviewed))

			stored, err := mockRepo.GetByID(submitted.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(stored.Status).To(Equal(accessrequest.StatusApproved))
			Expect(*stored.ReviewedBy).To(Equal("manager-1"))
		})

		It("should report ErrAlreadyReviewed when a concurrent reviewer wins", func() {
			mockRepo.markReviewedLost = true

			reviewed, err := service.Review(submitted.ID, "manager-1", accessrequest.ReviewDTO{Decision: accessrequest.StatusApproved})
			Expect(reviewed).To(BeNil())
			Expect(err).To(MatchError(accessrequest.ErrAlreadyReviewed))
		})

		It("should report ErrRequestNotFound for an unknown request", func() {
			reviewed, err := service.Review("missing", "manager-1", accessrequest.ReviewDTO{Decision: accessrequest.StatusApproved})
			Expect(reviewed).To(BeNil())
			Expect(err).To(MatchError(accessrequest.ErrRequestNotFound))
		})
	})
})
