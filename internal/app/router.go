package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atelier-commerce/atelier/internal/analytics"
	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/catalog"
	"github.com/atelier-commerce/atelier/internal/categories"
	"github.com/atelier-commerce/atelier/internal/identity"
	"github.com/atelier-commerce/atelier/internal/observability"
	"github.com/atelier-commerce/atelier/internal/orders"
	"github.com/atelier-commerce/atelier/internal/shared"
	"github.com/atelier-commerce/atelier/internal/users"
	"github.com/atelier-commerce/atelier/internal/vendors"
	"github.com/atelier-commerce/atelier/internal/view"
	"github.com/atelier-commerce/atelier/jobs"
	"github.com/atelier-commerce/atelier/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Gate           authz.Middleware

	AuthHandler      *identity.Handler
	CatalogHandler   *catalog.Handler
	CategoryHandler  *categories.Handler
	VendorHandler    *vendors.Handler
	UsersHandler     *users.Handler
	OrdersHandler    *orders.Handler
	AnalyticsHandler *analytics.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Atelier defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gate.Gate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Landing page for unauthenticated visitors
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		params.renderPage(w, r, "pages/landing.html", "Atelier", nil)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		claim := authz.ClaimFromContext(r.Context())
		if claim == nil {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		params.renderPage(w, r, "pages/home.html", "Atelier", map[string]any{
			"AppEnv": params.Config.AppEnv,
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Role landing pages. The gate has already redirected anyone who does
	// not belong here.
	r.Get("/dashboard/buyer", func(w http.ResponseWriter, r *http.Request) {
		params.renderPage(w, r, "pages/dashboard_buyer.html", "Your orders", nil)
	})
	r.Get("/dashboard/vendor", func(w http.ResponseWriter, r *http.Request) {
		claim := authz.ClaimFromContext(r.Context())
		params.renderPage(w, r, "pages/dashboard_vendor.html", "Your shop", map[string]any{
			"Approved": claim != nil && claim.Verified,
		})
	})
	r.Get("/dashboard/vendor/products", func(w http.ResponseWriter, r *http.Request) {
		claim := authz.ClaimFromContext(r.Context())
		params.renderPage(w, r, "pages/vendor_products.html", "Your listings", map[string]any{
			"Approved": claim != nil && claim.Verified,
		})
	})
	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		params.renderPage(w, r, "pages/admin.html", "Administration", nil)
	})
	r.Get("/admin/users", func(w http.ResponseWriter, r *http.Request) {
		params.renderPage(w, r, "pages/admin_users.html", "Accounts", nil)
	})
	r.Get("/admin/vendors", func(w http.ResponseWriter, r *http.Request) {
		params.renderPage(w, r, "pages/admin_vendors.html", "Vendor approvals", nil)
	})

	r.Route("/api", func(r chi.Router) {
		params.CatalogHandler.MountRoutes(r)
		params.CategoryHandler.MountPublicRoutes(r)

		r.Route("/user", params.OrdersHandler.MountUserRoutes)
		r.Route("/vendor", params.OrdersHandler.MountVendorRoutes)

		r.Route("/admin", func(r chi.Router) {
			params.VendorHandler.MountAdminRoutes(r)
			params.UsersHandler.MountAdminRoutes(r)
			params.CategoryHandler.MountAdminRoutes(r)
			params.AnalyticsHandler.MountAdminRoutes(r)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func (p RouterParams) renderPage(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := p.CSRFManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := p.Templates.Render(w, page, viewData); err != nil {
		p.Logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
