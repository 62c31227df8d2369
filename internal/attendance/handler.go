package attendance

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/harborops/attendance-management/internal/accessrequest"
	"github.com/harborops/attendance-management/internal/auth"
	"github.com/harborops/attendance-management/internal/geolocation"
	"github.com/harborops/attendance-management/internal/transport"
	"github.com/harborops/attendance-management/pkg/logger"
)

type ServiceAPI interface {
	ClockIn(ctx context.Context, userID string, provider geolocation.PositionProvider) (*ClockInResult, error)
	ClockOut(ctx context.Context, userID string, provider geolocation.PositionProvider) (*Session, error)
	RequestLocationAccess(ctx context.Context, userID, reason string, provider geolocation.PositionProvider) (*accessrequest.AccessRequest, error)
	CurrentSession(userID string) (*Session, error)
	ListOpenSessions(limit, offset int) ([]*OpenSessionView, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI

	// fallback supplies a position when the client sends none, typically the
	// device gateway. May be nil.
	fallback geolocation.PositionProvider
}

func NewHandler(service ServiceAPI, fallback geolocation.PositionProvider) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		fallback:    fallback,
	}
}

// provider picks the position source for a request: the fix the client sent,
// or the gateway fallback when the payload carries none.
func (h *Handler) provider(dto PositionDTO) geolocation.PositionProvider {
	if fix := dto.Fix(); fix != nil {
		return geolocation.NewStaticProvider(fix)
	}
	if h.fallback != nil {
		return h.fallback
	}
	return geolocation.NewStaticProvider(nil)
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ClockIn: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ClockDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ClockIn: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider := h.provider(dto.Position)

	result, err := h.Service.ClockIn(r.Context(), user.ID, provider)
	if err != nil {
		h.Logger.Error("ClockIn: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	if !result.Allowed {
		// business denial, not an error; the client offers the request path
		h.WriteJSON(w, http.StatusOK, result)
		return
	}

	h.Logger.Info("ClockIn: session opened",
		"session_id", result.Session.ID,
		"user_id", user.ID)

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ClockOut: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ClockDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ClockOut: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider := h.provider(dto.Position)

	session, err := h.Service.ClockOut(r.Context(), user.ID, provider)
	if err != nil {
		h.Logger.Error("ClockOut: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ClockOut: session closed",
		"session_id", session.ID,
		"user_id", user.ID)

	h.WriteJSON(w, http.StatusOK, session)
}

// RequestAccess files an appeal to clock in from the worker's current spot.
func (h *Handler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("RequestAccess: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RequestAccessDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RequestAccess: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider := h.provider(dto.Position)

	request, err := h.Service.RequestLocationAccess(r.Context(), user.ID, dto.Reason, provider)
	if err != nil {
		h.Logger.Error("RequestAccess: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RequestAccess: access request submitted",
		"request_id", request.ID,
		"user_id", user.ID)

	h.WriteJSON(w, http.StatusCreated, request)
}

// CurrentSession returns the caller's open session, if any.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CurrentSession: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.Service.CurrentSession(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, session)
}

// ListOpenSessions serves currently-open sessions for the admin dashboard.
func (h *Handler) ListOpenSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	sessions, err := h.Service.ListOpenSessions(limit, offset)
	if err != nil {
		h.Logger.Error("ListOpenSessions: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list open sessions")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"limit":    limit,
		"offset":   offset,
	})
}
