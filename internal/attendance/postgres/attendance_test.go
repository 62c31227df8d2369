package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal/attendance"
)

func TestSessionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SessionRepository Suite")
}

// SQLiteSession mirrors the production schema without postgres-only defaults
type SQLiteSession struct {
	ID                string     `gorm:"primaryKey"`
	UserID            string     `gorm:"column:user_id;not null"`
	ClockIn           time.Time  `gorm:"column:clock_in;not null"`
	ClockInLatitude   float64    `gorm:"column:clock_in_latitude"`
	ClockInLongitude  float64    `gorm:"column:clock_in_longitude"`
	ClockInAddress    string     `gorm:"column:clock_in_address"`
	ClockOut          *time.Time `gorm:"column:clock_out"`
	ClockOutLatitude  *float64   `gorm:"column:clock_out_latitude"`
	ClockOutLongitude *float64   `gorm:"column:clock_out_longitude"`
	ClockOutAddress   *string    `gorm:"column:clock_out_address"`
	Status            string     `gorm:"column:status"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (SQLiteSession) TableName() string {
	return "attendance_sessions"
}

var _ = Describe("SessionRepository", func() {
	var (
		db   *gorm.DB
		repo attendance.Repository
	)

	newOpenSession := func(id, userID string) *attendance.Session {
		now := time.Now()
		return &attendance.Session{
			ID:               id,
			UserID:           userID,
			ClockIn:          now,
			ClockInLatitude:  4.0511,
			ClockInLongitude: 9.7679,
			ClockInAddress:   "Rue de la Base Navale, Douala",
			Status:           attendance.StatusOpen,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteSession{})
		Expect(err).NotTo(HaveOccurred())

		// same partial unique index production runs with
		err = db.Exec(`CREATE UNIQUE INDEX idx_attendance_sessions_one_open
			ON attendance_sessions (user_id) WHERE status = 'open'`).Error
		Expect(err).NotTo(HaveOccurred())

		repo = NewSessionRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should create an open session", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject a second open session for the same user", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())

			err = repo.Create(newOpenSession("session-2", "worker-1"))
			Expect(err).To(MatchError(gorm.ErrDuplicatedKey))
		})

		It("should allow open sessions for different users", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())

			err = repo.Create(newOpenSession("session-2", "worker-2"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should allow a new open session once the previous one is closed", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())

			closed, err := repo.Close("session-1", 4.05, 9.77, "dock gate", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeTrue())

			err = repo.Create(newOpenSession("session-2", "worker-1"))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("GetOpenSession", func() {
		It("should return nil when the user has no open session", func() {
			session, err := repo.GetOpenSession("worker-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session).To(BeNil())
		})

		It("should return the open session", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())

			session, err := repo.GetOpenSession("worker-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session).NotTo(BeNil())
			Expect(session.ID).To(Equal("session-1"))
			Expect(session.IsOpen()).To(BeTrue())
		})

		It("should ignore closed sessions", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Close("session-1", 4.05, 9.77, "dock gate", time.Now())
			Expect(err).NotTo(HaveOccurred())

			session, err := repo.GetOpenSession("worker-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session).To(BeNil())
		})
	})

	Describe("GetByID", func() {
		It("should return ErrSessionNotFound for an unknown id", func() {
			_, err := repo.GetByID("missing")
			Expect(err).To(MatchError(attendance.ErrSessionNotFound))
		})

		It("should return the session", func() {
			err := repo.Create(newOpenSession("session-1", "worker-1"))
			Expect(err).NotTo(HaveOccurred())

			session, err := repo.GetByID("session-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.UserID).To(Equal("worker-1"))
		})
	})

	Describe("GetOpenSessions", func() {
		BeforeEach(func() {
			for i, userID := range []string{"worker-1", "worker-2", "worker-3"} {
				session := newOpenSession("session-"+userID, userID)
				session.ClockIn = time.Now().Add(time.Duration(-i) * time.Hour)
				Expect(repo.Create(session)).NotTo(HaveOccurred())
			}
			_, err := repo.Close("session-worker-3", 4.05, 9.77, "dock gate", time.Now())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return only open sessions, newest clock-in first", func() {
			sessions, err := repo.GetOpenSessions(20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(2))
			Expect(sessions[0].UserID).To(Equal("worker-1"))
			Expect(sessions[1].UserID).To(Equal("worker-2"))
		})

		It("should paginate", func() {
			sessions, err := repo.GetOpenSessions(1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].UserID).To(Equal("worker-2"))
		})
	})

	Describe("Close", func() {
		BeforeEach(func() {
			Expect(repo.Create(newOpenSession("session-1", "worker-1"))).NotTo(HaveOccurred())
		})

		It("should stamp the clock-out fields", func() {
			closedAt := time.Now()
			closed, err := repo.Close("session-1", 4.0186, 9.1953, "Bota Wharf Road, Limbe", closedAt)
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeTrue())

			session, err := repo.GetByID("session-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Status).To(Equal(attendance.StatusClosed))
			Expect(session.ClockOut).NotTo(BeNil())
			Expect(*session.ClockOutLatitude).To(Equal(4.0186))
			Expect(*session.ClockOutLongitude).To(Equal(9.1953))
			Expect(*session.ClockOutAddress).To(Equal("Bota Wharf Road, Limbe"))
		})

		It("should report false on a second close and keep the first stamp", func() {
			firstClose := time.Now().Add(-time.Minute)
			closed, err := repo.Close("session-1", 4.0186, 9.1953, "first", firstClose)
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeTrue())

			closed, err = repo.Close("session-1", 0, 0, "second", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeFalse())

			session, err := repo.GetByID("session-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(*session.ClockOutAddress).To(Equal("first"))
		})

		It("should report false for an unknown session", func() {
			closed, err := repo.Close("missing", 0, 0, "", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeFalse())
		})
	})
})
