package leave

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/leavesync/leavesync/internal/auth"
	"github.com/leavesync/leavesync/internal/request"
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

// Create handles POST /api/leaves
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lv, err := h.Service.Create(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Leave request submitted successfully",
		"leave":   lv,
	})
}

// List handles GET /api/leaves
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var employeeIDFilter *int64
	if idStr := r.URL.Query().Get("employeeId"); idStr != "" {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			employeeIDFilter = &id
		}
	}

	params := listParams(r)
	leaves, pagination, err := h.Service.List(actor,
		r.URL.Query().Get("status"),
		r.URL.Query().Get("leaveType"),
		employeeIDFilter,
		params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leaves":     leaves,
		"pagination": pagination,
	})
}

// GetByID handles GET /api/leaves/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, parsed := h.parseID(w, r)
	if !parsed {
		return
	}

	lv, err := h.Service.GetByID(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"leave": lv})
}

// Approve handles PATCH /api/leaves/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, request.StatusApproved)
}

// Reject handles PATCH /api/leaves/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, request.StatusRejected)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, decision string) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, parsed := h.parseID(w, r)
	if !parsed {
		return
	}

	var dto ReviewDTO
	if r.Body != nil {
		// Comment is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	var (
		lv  *Leave
		err error
	)
	if decision == request.StatusApproved {
		lv, err = h.Service.Approve(r.Context(), id, actor.ID, dto.Comment)
	} else {
		lv, err = h.Service.Reject(r.Context(), id, actor.ID, dto.Comment)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	message := "Leave rejected successfully"
	if decision == request.StatusApproved {
		message = "Leave approved successfully"
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"leave":   lv,
	})
}

// Delete handles DELETE /api/leaves/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, parsed := h.parseID(w, r)
	if !parsed {
		return
	}

	if err := h.Service.Delete(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Leave request deleted successfully",
	})
}

// Stats handles GET /api/leaves/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "Unauthorized. Please login.")
		return nil, false
	}
	return actor, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave ID")
		return 0, false
	}
	return id, true
}

func listParams(r *http.Request) request.ListParams {
	var params request.ListParams
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			params.Page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = l
		}
	}
	return params
}
