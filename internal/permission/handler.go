package permission

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/harborops/attendance-management/internal/transport"
	"github.com/harborops/attendance-management/pkg/logger"
)

type ServiceAPI interface {
	CanClockInAnywhere(userID string) (bool, error)
	SetOverride(dto SetPermissionDTO) (*LocationPermission, error)
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

// SetOverride grants or revokes a user's anywhere permission, admin only.
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	var dto SetPermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetOverride: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if userID := chi.URLParam(r, "userID"); userID != "" {
		dto.UserID = userID
	}

	permission, err := h.Service.SetOverride(dto)
	if err != nil {
		h.Logger.Error("SetOverride: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SetOverride: permission updated",
		"user_id", dto.UserID,
		"can_clock_in_anywhere", dto.CanClockInAnywhere)

	h.WriteJSON(w, http.StatusOK, permission)
}
