package vendors

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/platform/httpx"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Handler serves the admin vendor-moderation API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountAdminRoutes registers moderation routes under the admin API tree.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/vendors", h.List)
	r.Get("/vendors/{id}", h.Show)
	r.Post("/vendors/{id}/approve", h.Approve)
	r.Post("/vendors/{id}/reject", h.Reject)
	r.Post("/vendors/bulk-approve", h.BulkApprove)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type bulkApproveRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

type decisionResponse struct {
	Modified bool `json:"modified"`
}

type bulkApproveResponse struct {
	ModifiedCount int64 `json:"modified_count"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var status *ApprovalStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := ApprovalStatus(raw)
		if !s.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown approval status")
			return
		}
		status = &s
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, 50, 0)

	summaries, total, err := h.service.List(r.Context(), status, pagination.PerPage, pagination.Offset())
	if err != nil {
		h.logger.Error("list vendors", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"vendors": summaries,
		"total":   total,
		"page":    pagination.Page,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.vendorID(w, r)
	if !ok {
		return
	}
	profile, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	id, ok := h.vendorID(w, r)
	if !ok {
		return
	}
	modified, err := h.service.Approve(r.Context(), claim, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, decisionResponse{Modified: modified})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	id, ok := h.vendorID(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, map[string]string{"reason": "required, at most 1000 characters"})
		return
	}
	modified, err := h.service.Reject(r.Context(), claim, id, req.Reason)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, decisionResponse{Modified: modified})
}

func (h *Handler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	var req bulkApproveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, map[string]string{"ids": "between 1 and 500 positive ids"})
		return
	}
	count, err := h.service.BulkApprove(r.Context(), claim, req.IDs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bulkApproveResponse{ModifiedCount: count})
}

func (h *Handler) vendorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid vendor id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error("vendor moderation request failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
