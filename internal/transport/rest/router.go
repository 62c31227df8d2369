package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/harborops/attendance-management/internal/accessrequest"
	"github.com/harborops/attendance-management/internal/attendance"
	"github.com/harborops/attendance-management/internal/auth"
	"github.com/harborops/attendance-management/internal/location"
	"github.com/harborops/attendance-management/internal/permission"
	"github.com/harborops/attendance-management/internal/transport/middleware"
	"github.com/harborops/attendance-management/internal/transport/swagger"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authMiddleware *auth.Middleware,
	attendanceHandler *attendance.Handler,
	accessRequestHandler *accessrequest.Handler,
	locationHandler *location.Handler,
	permissionHandler *permission.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authMiddleware.Authenticate)

			// Worker attendance routes
			if attendanceHandler != nil {
				pr.Route("/attendance", func(ar chi.Router) {
					ar.Post("/clock-in", attendanceHandler.ClockIn)
					ar.Post("/clock-out", attendanceHandler.ClockOut)
					ar.Get("/session", attendanceHandler.CurrentSession)
					ar.Post("/access-requests", attendanceHandler.RequestAccess)
				})
			}

			// Active fences are readable by any authenticated worker so the
			// client can show where clocking in is allowed.
			if locationHandler != nil {
				pr.Get("/geofences", locationHandler.ListActiveFences)
			}

			// Admin console routes, managers and admins only
			pr.Group(func(mr chi.Router) {
				mr.Use(authMiddleware.RequireManageAttendance)

				if attendanceHandler != nil {
					mr.Get("/admin/sessions", attendanceHandler.ListOpenSessions)
				}

				if accessRequestHandler != nil {
					mr.Route("/admin/access-requests", func(rr chi.Router) {
						rr.Get("/", accessRequestHandler.ListPending)
						rr.Patch("/{id}/review", accessRequestHandler.Review)
					})
				}

				if locationHandler != nil {
					mr.Route("/admin/geofences", func(gr chi.Router) {
						gr.Get("/", locationHandler.ListFences)
						gr.Post("/", locationHandler.CreateFence)
						gr.Patch("/{id}/active", locationHandler.SetFenceActive)
					})
				}

				if permissionHandler != nil {
					mr.Put("/admin/permissions/{userID}", permissionHandler.SetOverride)
				}
			})
		})
	})
}
