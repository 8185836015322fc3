package middlewares

import (
	"net/http"

	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

// WithRecover captura panics y responde 500.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
					)
					httperrors.WriteError(w, httperrors.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
