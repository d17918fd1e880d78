package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vivenda-crm/vivenda-crm/internal/auth"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/clients"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/dashboard"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/estimates"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/preview"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/properties"
	"github.com/vivenda-crm/vivenda-crm/internal/observability"
	"github.com/vivenda-crm/vivenda-crm/internal/rbac"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
	"github.com/vivenda-crm/vivenda-crm/internal/users"
	"github.com/vivenda-crm/vivenda-crm/report"
)

// RouterDeps aggregates everything the HTTP router mounts.
type RouterDeps struct {
	Middleware MiddlewareConfig
	Metrics    *observability.Metrics
	RBAC       *rbac.Middleware

	Auth       *auth.Handler
	Users      *users.Handler
	Clients    *clients.Handler
	Properties *properties.Handler
	Estimates  *estimates.Handler
	Invoices   *invoices.Handler
	Preview    *preview.Handler
	Dashboard  *dashboard.Handler
	Reports    *report.Handler
}

// NewRouter assembles the application router.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(deps.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/auth", deps.Auth.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(deps.RBAC.RequireAuthenticated)

		r.Route("/crm", func(r chi.Router) {
			r.Route("/clients", deps.Clients.MountRoutes)
			r.Route("/properties", deps.Properties.MountRoutes)
			r.Route("/estimates", deps.Estimates.MountRoutes)
			r.Route("/invoices", deps.Invoices.MountRoutes)
			r.Route("/calc", deps.Preview.MountRoutes)
			r.Route("/dashboard", deps.Dashboard.MountRoutes)
			r.Route("/reports", deps.Reports.MountRoutes)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.RBAC.RequireRole(shared.RoleAdmin))
			r.Route("/users", deps.Users.MountRoutes)
		})
	})

	return r
}
