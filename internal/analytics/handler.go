package analytics

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-commerce/atelier/internal/platform/httpx"
)

// Handler serves the admin analytics API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers routes under the admin API tree.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/analytics", h.Dashboard)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, ErrUnknownPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period must be one of 7d, 30d, 90d, 1y")
			return
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	dash, err := h.service.Dashboard(r.Context(), period)
	if err != nil {
		h.logger.Error("compute analytics dashboard", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}
