package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/location"
)

func TestGeoFenceRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GeoFence Repository Suite")
}

// SQLiteGeoFence mirrors the production schema without postgres-only defaults
type SQLiteGeoFence struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Address      string    `gorm:"column:address"`
	Latitude     float64   `gorm:"not null"`
	Longitude    float64   `gorm:"not null"`
	RadiusMeters float64   `gorm:"column:radius_meters;not null"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (SQLiteGeoFence) TableName() string {
	return "geofences"
}

var _ = Describe("GeoFenceRepository", func() {
	var (
		db   *gorm.DB
		repo location.Repository
	)

	newFence := func(id, name string, active bool) *location.GeoFence {
		return &location.GeoFence{
			ID:           id,
			Name:         name,
			Latitude:     4.0511,
			Longitude:    9.7679,
			RadiusMeters: 250,
			IsActive:     active,
			CreatedAt:    time.Now(),
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteGeoFence{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewGeoFenceRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create and GetByID", func() {
		It("should round-trip a fence", func() {
			Expect(repo.Create(newFence("fence-1", "Port of Douala", true))).NotTo(HaveOccurred())

			fence, err := repo.GetByID("fence-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(fence.Name).To(Equal("Port of Douala"))
			Expect(fence.RadiusMeters).To(Equal(250.0))
		})

		It("should return ErrFenceNotFound for an unknown id", func() {
			_, err := repo.GetByID("missing")
			Expect(err).To(MatchError(location.ErrFenceNotFound))
		})
	})

	Describe("GetActive", func() {
		It("should return only active fences, sorted by name", func() {
			Expect(repo.Create(newFence("fence-1", "Limbe Dock Office", true))).NotTo(HaveOccurred())
			Expect(repo.Create(newFence("fence-2", "Bonaberi Shipyard", true))).NotTo(HaveOccurred())
			Expect(repo.Create(newFence("fence-3", "Old Quay", false))).NotTo(HaveOccurred())

			active, err := repo.GetActive()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(2))
			Expect(active[0].Name).To(Equal("Bonaberi Shipyard"))
			Expect(active[1].Name).To(Equal("Limbe Dock Office"))
		})
	})

	Describe("UpdateActive", func() {
		It("should deactivate without deleting", func() {
			Expect(repo.Create(newFence("fence-1", "Port of Douala", true))).NotTo(HaveOccurred())

			Expect(repo.UpdateActive("fence-1", false)).NotTo(HaveOccurred())

			active, err := repo.GetActive()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())

			all, err := repo.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].IsActive).To(BeFalse())
		})
	})
})
