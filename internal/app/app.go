package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/internal/admin"
	"Storefront/internal/auth"
	"Storefront/internal/catalog"
	"Storefront/internal/order"
	"Storefront/internal/shop"
	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Store      *catalog.Store
	Gate       *auth.Gate
	JWT        *auth.TokenMaker
	SessionTTL time.Duration
	OrderURL   string
}

// NewHandler wires the shopper, order, session and admin routes onto one router.
func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, log)
	metricsOn := setupMetrics(r, deps, httpDeps, log)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Store, log))

	shopSrv := &shop.Server{Catalog: deps.Store, Log: log}
	shopSrv.Routes(r)

	orderSrv := &order.Server{Catalog: deps.Store, URL: deps.OrderURL, Log: log}
	authSrv := &auth.Server{Log: log, Gate: deps.Gate, JWT: deps.JWT, SessionTTL: deps.SessionTTL}
	if metricsOn {
		orderSrv.Requests = order.NewRequestCounter(httpDeps.Registry)
		authSrv.Attempts = auth.NewAttemptsCounter(httpDeps.Registry)
	}
	orderSrv.Routes(r)
	authSrv.Routes(r)

	adminSrv := &admin.Server{Catalog: deps.Store, Log: log}
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAdmin(deps.Gate, deps.JWT))
		authSrv.GuardedRoutes(pr)
		adminSrv.Routes(pr)
	})

	return r
}

func setupMiddleware(r *chi.Mux, log *zap.Logger) {
	r.Use(chimw.RequestID)
	r.Use(kit.Logging(log))
	r.Use(kit.Recoverer(log))
}

func setupMetrics(r *chi.Mux, deps Deps, httpDeps HTTPDeps, log *zap.Logger) bool {
	if httpDeps.Registry == nil {
		if httpDeps.MetricsEnabled {
			log.Warn("metrics enabled but Registry is nil")
		}
		return false
	}

	metrics := kit.NewMetrics(httpDeps.Registry)
	r.Use(metrics.Middleware(httpDeps.Service, kit.RoutePattern))
	httpDeps.Registry.MustRegister(catalog.NewCollector(deps.Store))

	if httpDeps.MetricsEnabled {
		r.With(kit.MetricsAuth(httpDeps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(httpDeps.Registry, promhttp.HandlerOpts{}))
	}
	return true
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(store *catalog.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !store.Seeded() {
			log.Warn("readyz failed: catalog not seeded")
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
