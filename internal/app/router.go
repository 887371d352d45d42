package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/linentrack/linentrack/internal/auth"
	"github.com/linentrack/linentrack/internal/dashboard"
	"github.com/linentrack/linentrack/internal/linens"
	"github.com/linentrack/linentrack/internal/masterdata/damagereasons"
	"github.com/linentrack/linentrack/internal/masterdata/hospitals"
	"github.com/linentrack/linentrack/internal/masterdata/products"
	"github.com/linentrack/linentrack/internal/masterdata/wards"
	"github.com/linentrack/linentrack/internal/observability"
	"github.com/linentrack/linentrack/internal/requisitions"
	"github.com/linentrack/linentrack/internal/shared"
	"github.com/linentrack/linentrack/internal/users"
	"github.com/linentrack/linentrack/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler         *auth.Handler
	RequisitionHandler  *requisitions.Handler
	LinenHandler        *linens.Handler
	WardHandler         *wards.Handler
	ProductHandler      *products.Handler
	DamageReasonHandler *damagereasons.Handler
	HospitalHandler     *hospitals.Handler
	UserHandler         *users.Handler
	DashboardHandler    *dashboard.Handler
	JobHandler          *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)
		api.Route("/requisitions", params.RequisitionHandler.MountRoutes)
		api.Route("/linens", params.LinenHandler.MountRoutes)
		api.Route("/dashboard", params.DashboardHandler.MountRoutes)
		api.Route("/users", params.UserHandler.MountRoutes)
		api.Route("/masterdata", func(md chi.Router) {
			md.Route("/wards", params.WardHandler.MountRoutes)
			md.Route("/products", params.ProductHandler.MountRoutes)
			md.Route("/damage-reasons", params.DamageReasonHandler.MountRoutes)
			md.Route("/hospitals", params.HospitalHandler.MountRoutes)
		})
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
