package orders

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

// Handler serves the buyer and vendor order APIs.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountUserRoutes registers the buyer-facing order routes.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Get("/orders", h.ListMine)
	r.Post("/orders", h.Create)
	r.Get("/orders/{id}", h.Show)
}

// MountVendorRoutes registers the vendor-facing order routes.
func (h *Handler) MountVendorRoutes(r chi.Router) {
	r.Get("/orders", h.ListForVendor)
	r.Get("/orders/{id}", h.Show)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	order, err := h.service.Create(r.Context(), claim, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	pagination := paginationFromQuery(r)
	list, total, err := h.service.ListForBuyer(r.Context(), claim, pagination)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondList(w, list, total, pagination)
}

func (h *Handler) ListForVendor(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	pagination := paginationFromQuery(r)
	list, total, err := h.service.ListForVendor(r.Context(), claim, pagination)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondList(w, list, total, pagination)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	order, err := h.service.Get(r.Context(), claim, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) respondList(w http.ResponseWriter, list []Order, total int, p shared.Pagination) {
	if list == nil {
		list = []Order{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"orders": list,
		"total":  total,
		"page":   p.Page,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrForbidden):
		httpx.RespondError(w, httpx.ErrForbidden)
	case errors.Is(err, ErrProductUnavailable):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "a requested product is not available")
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "insufficient stock for a requested product")
	default:
		h.logger.Error("order request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func paginationFromQuery(r *http.Request) shared.Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return shared.NewPagination(page, 20, 0)
}
