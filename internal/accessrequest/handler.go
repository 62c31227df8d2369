package accessrequest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/harborops/attendance-management/internal/auth"
	"github.com/harborops/attendance-management/internal/transport"
	"github.com/harborops/attendance-management/pkg/logger"
)

type ServiceAPI interface {
	ListPending(limit, offset int) ([]*AccessRequest, error)
	Review(requestID, reviewerID string, dto ReviewDTO) (*AccessRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListPending serves the review queue, oldest first.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
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

	requests, err := h.Service.ListPending(limit, offset)
	if err != nil {
		h.Logger.Error("ListPending: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list access requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// Review records the adjudication decision for a pending request.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("Review: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID := chi.URLParam(r, "id")

	var dto ReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Review: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.Review(requestID, user.ID, dto)
	if err != nil {
		h.Logger.Error("Review: service error", "error", err, "request_id", requestID, "reviewer_id", user.ID)

		switch err {
		case ErrRequestNotFound:
			h.WriteError(w, http.StatusNotFound, "access request not found")
		case ErrAlreadyReviewed:
			h.WriteError(w, http.StatusConflict, "access request has already been reviewed")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.Logger.Info("Review: access request reviewed",
		"request_id", requestID,
		"reviewer_id", user.ID,
		"decision", dto.Decision)

	h.WriteJSON(w, http.StatusOK, request)
}
