package auth

import (
	"log/slog"
	"net/http"

	"github.com/harborops/attendance-management/internal"
	"github.com/harborops/attendance-management/internal/transport"
	"github.com/harborops/attendance-management/pkg/logger"
)

type Middleware struct {
	*transport.BaseHandler
	validator TokenValidatorAPI
}

func NewMiddleware(validator TokenValidatorAPI) *Middleware {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Middleware{
		BaseHandler: transport.NewBaseHandler(lg),
		validator:   validator,
	}
}

// Authenticate validates the bearer token and stores the resulting user in
// the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.Logger.Error("auth middleware: missing authorization token")
			m.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := m.validator.ValidateAccessToken(token)
		if err != nil {
			m.Logger.Error("auth middleware: token validation failed", "error", err)
			m.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user := &User{ID: claims.Subject, Role: claims.Role}

		ctx := ContextWithUser(r.Context(), user)
		ctx = internal.ContextWithUserID(ctx, user.ID)
		ctx = logger.With(ctx, "user_id", user.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManageAttendance gates the admin console surface.
func (m *Middleware) RequireManageAttendance(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user == nil {
			m.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !user.CanManageAttendance() {
			m.Logger.Warn("access denied: attendance management requires admin or manager role",
				"user_id", user.ID,
				"role", user.Role)
			m.WriteError(w, http.StatusForbidden, "manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
