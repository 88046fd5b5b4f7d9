package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/platform/httpx"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Handler serves the product JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers product API routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Post("/products", h.Create)
	r.Get("/products/{id}", h.Show)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
}

// List serves the public storefront listing with query-derived filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := Filter{Search: q.Get("search")}
	if v := q.Get("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			filter.CategoryID = &id
		}
	}
	if v := q.Get("tags"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Tags = append(filter.Tags, strings.ToLower(t))
			}
		}
	}
	if v := q.Get("price_min"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil && cents >= 0 {
			filter.PriceMinCents = &cents
		}
	}
	if v := q.Get("price_max"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil && cents >= 0 {
			filter.PriceMaxCents = &cents
		}
	}

	page, perPage := parsePage(q.Get("page"), q.Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	products, total, err := h.service.ListPublic(r.Context(), filter, pagination.PerPage, pagination.Offset())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, ListProductsResponse{
		Products: products,
		Total:    total,
		Page:     pagination.Page,
		PerPage:  pagination.PerPage,
	})
}

// Show serves a single product.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Create inserts a new product owned by the authenticated vendor.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	if claim == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}

	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := h.validateRequest(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}

	product, err := h.service.Create(r.Context(), claim, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update applies a partial update to an owned product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	if claim == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := h.validateRequest(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}

	product, err := h.service.Update(r.Context(), claim, id, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete removes an owned product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claim := authz.ClaimFromContext(r.Context())
	if claim == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	if err := h.service.Delete(r.Context(), claim, id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) validateRequest(req any) map[string]string {
	fields := make(map[string]string)
	if err := h.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				fields[fe.Field()] = fe.Tag()
			}
		} else {
			fields["general"] = "invalid input"
		}
	}
	return fields
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrForbidden):
		httpx.RespondError(w, httpx.ErrForbidden)
	case errors.Is(err, ErrDuplicateSlug):
		httpx.RespondError(w, httpx.ErrDuplicate)
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parsePage(pageRaw, perPageRaw string) (int, int) {
	page, _ := strconv.Atoi(pageRaw)
	perPage, _ := strconv.Atoi(perPageRaw)
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
