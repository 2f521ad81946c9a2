package reimbursement

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

// Create handles POST /api/reimbursements
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateReimbursementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.Create(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Reimbursement claim submitted successfully",
		"reimbursement": claim,
	})
}

// List handles GET /api/reimbursements
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

	claims, pagination, err := h.Service.List(actor,
		r.URL.Query().Get("status"),
		r.URL.Query().Get("category"),
		employeeIDFilter,
		params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reimbursements": claims,
		"pagination":     pagination,
	})
}

// GetByID handles GET /api/reimbursements/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, parsed := h.parseID(w, r)
	if !parsed {
		return
	}

	claim, err := h.Service.GetByID(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reimbursement": claim})
}

// Approve handles PATCH /api/reimbursements/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, request.StatusApproved)
}

// Reject handles PATCH /api/reimbursements/{id}/reject
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
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	var (
		claim *Reimbursement
		err   error
	)
	if decision == request.StatusApproved {
		claim, err = h.Service.Approve(r.Context(), id, actor.ID, dto.Comment)
	} else {
		claim, err = h.Service.Reject(r.Context(), id, actor.ID, dto.Comment)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	message := "Reimbursement rejected successfully"
	if decision == request.StatusApproved {
		message = "Reimbursement approved successfully"
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":       message,
		"reimbursement": claim,
	})
}

// Stats handles GET /api/reimbursements/stats
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
		h.WriteError(w, http.StatusBadRequest, "invalid reimbursement ID")
		return 0, false
	}
	return id, true
}
