package location_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/harborops/attendance-management/internal/geo"
	"github.com/harborops/attendance-management/internal/location"
)

func TestLocationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Location Service Suite")
}

// Mock repository for testing
type mockFenceRepository struct {
	fences      map[string]*location.GeoFence
	createError error
	getError    error
	updateError error
}

func newMockFenceRepository() *mockFenceRepository {
	return &mockFenceRepository{
		fences: make(map[string]*location.GeoFence),
	}
}

func (m *mockFenceRepository) Create(fence *location.GeoFence) error {
	if m.createError != nil {
		return m.createError
	}
	m.fences[fence.ID] = fence
	return nil
}

func (m *mockFenceRepository) GetByID(id string) (*location.GeoFence, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	fence, exists := m.fences[id]
	if !exists {
		return nil, errors.New("geofence not found")
	}
	return fence, nil
}

func (m *mockFenceRepository) GetAll() ([]*location.GeoFence, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	all := make([]*location.GeoFence, 0, len(m.fences))
	for _, fence := range m.fences {
		all = append(all, fence)
	}
	return all, nil
}

func (m *mockFenceRepository) GetActive() ([]*location.GeoFence, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	active := make([]*location.GeoFence, 0)
	for _, fence := range m.fences {
		if fence.IsActive {
			active = append(active, fence)
		}
	}
	return active, nil
}

func (m *mockFenceRepository) UpdateActive(id string, isActive bool) error {
	if m.updateError != nil {
		return m.updateError
	}
	if fence, exists := m.fences[id]; exists {
		fence.IsActive = isActive
	}
	return nil
}

var _ = Describe("LocationService", func() {
	var (
		service  *location.Service
		mockRepo *mockFenceRepository
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = newMockFenceRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = location.NewService(mockRepo, logger)
	})

	Describe("CreateFence", func() {
		It("should register an active fence", func() {
			fence, err := service.CreateFence(location.CreateGeoFenceDTO{
				Name:         "Port of Douala - Main Terminal",
				Address:      "Rue de la Base Navale, Douala",
				Latitude:     4.0511,
				Longitude:    9.7679,
				RadiusMeters: 250,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(fence.ID).ToNot(BeEmpty())
			Expect(fence.IsActive).To(BeTrue())
			Expect(fence.RadiusMeters).To(Equal(250.0))
		})

		It("should default the radius when omitted", func() {
			fence, err := service.CreateFence(location.CreateGeoFenceDTO{
				Name:      "Bonaberi Shipyard",
				Latitude:  4.0726,
				Longitude: 9.6808,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(fence.RadiusMeters).To(Equal(location.DefaultRadiusMeters))
		})

		It("should reject a missing name", func() {
			fence, err := service.CreateFence(location.CreateGeoFenceDTO{
				Latitude:  4.0511,
				Longitude: 9.7679,
			})

			Expect(fence).To(BeNil())
			Expect(err).To(HaveOccurred())
		})

		It("should reject out-of-range coordinates", func() {
			fence, err := service.CreateFence(location.CreateGeoFenceDTO{
				Name:      "Nowhere",
				Latitude:  91.0,
				Longitude: 9.7679,
			})

			Expect(fence).To(BeNil())
			Expect(err).To(HaveOccurred())
		})

		It("should reject a negative radius", func() {
			fence, err := service.CreateFence(location.CreateGeoFenceDTO{
				Name:         "Nowhere",
				Latitude:     4.0511,
				Longitude:    9.7679,
				RadiusMeters: -5,
			})

			Expect(fence).To(BeNil())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetActive", func() {
		var fence *location.GeoFence

		BeforeEach(func() {
			var err error
			fence, err = service.CreateFence(location.CreateGeoFenceDTO{
				Name:      "Limbe Dock Office",
				Latitude:  4.0186,
				Longitude: 9.1953,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should deactivate a fence", func() {
			updated, err := service.SetActive(fence.ID, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())

			active, err := service.ListActive()
			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeEmpty())
		})

		It("should keep deactivated fences visible in the admin list", func() {
			_, err := service.SetActive(fence.ID, false)
			Expect(err).ToNot(HaveOccurred())

			all, err := service.ListAll()
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("should treat re-setting the current value as a no-op success", func() {
			updated, err := service.SetActive(fence.ID, true)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeTrue())
		})

		It("should report ErrFenceNotFound for an unknown fence", func() {
			updated, err := service.SetActive("missing", false)

			Expect(updated).To(BeNil())
			Expect(err).To(MatchError(location.ErrFenceNotFound))
		})
	})

	Describe("GeoFence Contains", func() {
		It("should admit a point inside the radius and refuse one outside", func() {
			fence := &location.GeoFence{
				Name:         "Port of Douala - Main Terminal",
				Latitude:     4.0511,
				Longitude:    9.7679,
				RadiusMeters: 250,
			}

			Expect(fence.Contains(geo.Coordinate{Latitude: 4.0511, Longitude: 9.7679})).To(BeTrue())
			Expect(fence.Contains(geo.Coordinate{Latitude: 4.0525, Longitude: 9.7690})).To(BeTrue())
			Expect(fence.Contains(geo.Coordinate{Latitude: 4.0600, Longitude: 9.7800})).To(BeFalse())
		})
	})
})
