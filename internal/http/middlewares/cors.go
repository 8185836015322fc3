package middlewares

import (
	"net/http"
	"strings"
)

// WithCORS habilita CORS con credenciales para los orígenes permitidos.
// Sin orígenes no hace nada.
func WithCORS(allowed []string) Middleware {
	trim := func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

	alist := make([]string, 0, len(allowed))
	for _, v := range allowed {
		if v = trim(v); v != "" {
			alist = append(alist, v)
		}
	}

	return func(next http.Handler) http.Handler {
		if len(alist) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := trim(r.Header.Get("Origin"))
			ok := false
			for _, a := range alist {
				if origin != "" && (a == "*" || strings.EqualFold(origin, a)) {
					ok = true
					break
				}
			}

			w.Header().Add("Vary", "Origin")
			if ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-CSRF-Token")
				h.Set("Access-Control-Expose-Headers", "ETag, X-Request-ID, X-CSRF-Token, Retry-After")
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
