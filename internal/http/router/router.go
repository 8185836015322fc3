// Package router arma el árbol de rutas HTTP sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	mw "github.com/dropDatabas3/efedauth/internal/http/middlewares"
	"github.com/dropDatabas3/efedauth/internal/metrics"
	"github.com/dropDatabas3/efedauth/internal/rate"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/session"
)

// Deps contiene todo lo que necesita el router.
type Deps struct {
	Auth   *authctrl.Controllers
	Health *healthctrl.HealthController

	Sessions *session.Manager
	CSRF     *csrf.Deriver
	Metrics  *metrics.Metrics // opcional

	// RateLimiter es el límite global por IP sobre /api (opcional).
	RateLimiter       rate.Limiter
	TrustProxyHeaders bool
	CORSOrigins       []string
	// AllowSeed habilita POST /api/auth/seed.
	AllowSeed bool
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRequestID(),
		mw.WithClientIP(d.TrustProxyHeaders),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(d.Metrics),
		mw.WithCORS(d.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	RegisterHealthRoutes(r, HealthRouterDeps{Controller: d.Health, Metrics: d.Metrics})

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.RateLimiter,
			OnLimited: func() {
				d.Metrics.RateLimited("http")
			},
		}))
		RegisterAuthRoutes(api, AuthRouterDeps{
			Controllers: d.Auth,
			Sessions:    d.Sessions,
			CSRF:        d.CSRF,
			AllowSeed:   d.AllowSeed,
		})
	})

	return r
}
