package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/efedauth/internal/metrics"
)

// WithMetrics registra latencia, status e inflight por ruta. Usa el patrón de
// chi cuando existe; si no, el path normalizado.
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			raw := metrics.NormalizePath(r.URL.Path)
			done := m.TrackInflight(r.Method, raw)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			done()

			path := raw
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					path = p
				}
			}
			m.ObserveRequest(r.Method, path, rec.status, time.Since(start))
		})
	}
}
