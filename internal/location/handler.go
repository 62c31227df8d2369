package location

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/harborops/attendance-management/internal/transport"
	"github.com/harborops/attendance-management/pkg/logger"
)

type ServiceAPI interface {
	CreateFence(dto CreateGeoFenceDTO) (*GeoFence, error)
	ListActive() ([]*GeoFence, error)
	ListAll() ([]*GeoFence, error)
	SetActive(id string, isActive bool) (*GeoFence, error)
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

// ListActiveFences serves the fences workers may clock in from.
func (h *Handler) ListActiveFences(w http.ResponseWriter, r *http.Request) {
	fences, err := h.Service.ListActive()
	if err != nil {
		h.Logger.Error("ListActiveFences: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list geofences")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"geofences": fences})
}

// ListFences serves the full registry, admin only.
func (h *Handler) ListFences(w http.ResponseWriter, r *http.Request) {
	fences, err := h.Service.ListAll()
	if err != nil {
		h.Logger.Error("ListFences: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list geofences")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"geofences": fences})
}

func (h *Handler) CreateFence(w http.ResponseWriter, r *http.Request) {
	var dto CreateGeoFenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateFence: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fence, err := h.Service.CreateFence(dto)
	if err != nil {
		h.Logger.Error("CreateFence: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateFence: geofence created", "fence_id", fence.ID, "name", fence.Name)
	h.WriteJSON(w, http.StatusCreated, fence)
}

func (h *Handler) SetFenceActive(w http.ResponseWriter, r *http.Request) {
	fenceID := chi.URLParam(r, "id")

	var dto SetActiveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetFenceActive: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fence, err := h.Service.SetActive(fenceID, dto.IsActive)
	if err != nil {
		h.Logger.Error("SetFenceActive: service error", "error", err, "fence_id", fenceID)

		switch err {
		case ErrFenceNotFound:
			h.WriteError(w, http.StatusNotFound, "geofence not found")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to update geofence")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, fence)
}
