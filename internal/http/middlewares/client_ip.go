package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/efedauth/internal/http/helpers"
)

// WithClientIP resuelve la IP del cliente una sola vez por request.
func WithClientIP(trustProxyHeaders bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := helpers.ClientIP(r, trustProxyHeaders)
			next.ServeHTTP(w, r.WithContext(setClientIP(r.Context(), ip)))
		})
	}
}
