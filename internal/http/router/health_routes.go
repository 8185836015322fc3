package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/health"
	"github.com/dropDatabas3/efedauth/internal/metrics"
)

// HealthRouterDeps contiene las dependencias de las rutas de infra.
type HealthRouterDeps struct {
	Controller *ctrl.HealthController
	Metrics    *metrics.Metrics
}

// RegisterHealthRoutes registra /healthz, /readyz y /metrics. Sin sesión ni rate limit.
func RegisterHealthRoutes(r chi.Router, deps HealthRouterDeps) {
	if deps.Controller != nil {
		r.Get("/healthz", deps.Controller.Healthz)
		r.Get("/readyz", deps.Controller.Readyz)
	}
	if deps.Metrics != nil {
		r.Method("GET", "/metrics", deps.Metrics.Handler())
	}
}
