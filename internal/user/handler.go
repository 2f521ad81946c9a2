package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/leavesync/leavesync/internal/auth"
	"github.com/leavesync/leavesync/internal/transport"
	"github.com/leavesync/leavesync/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// List handles GET /api/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Role:   r.URL.Query().Get("role"),
		Search: r.URL.Query().Get("search"),
	}
	if activeStr := r.URL.Query().Get("isActive"); activeStr != "" {
		active := activeStr == "true"
		filter.IsActive = &active
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			filter.Params.Page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			filter.Params.Limit = l
		}
	}

	users, pagination, err := h.Service.List(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":      pagination.Total,
		"users":      users,
		"pagination": pagination,
	})
}

// GetByID handles GET /api/users/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	u, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// UpdateRole handles PATCH /api/users/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.UpdateRole(id, dto.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Role updated successfully",
		"user":    u,
	})
}

// ToggleStatus handles PATCH /api/users/{id}/status
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "Unauthorized. Please login.")
		return
	}

	id, parsed := h.parseID(w, r)
	if !parsed {
		return
	}

	u, err := h.Service.ToggleStatus(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	message := "User deactivated successfully"
	if u.IsActive {
		message = "User activated successfully"
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"user":    u,
	})
}

// Stats handles GET /api/users/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return 0, false
	}
	return id, true
}
