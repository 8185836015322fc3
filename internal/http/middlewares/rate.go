package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/rate"
)

// RateKeyFunc arma la key de rate limit para un request.
type RateKeyFunc func(r *http.Request) string

// IPRateKey usa la IP resuelta por WithClientIP.
func IPRateKey(r *http.Request) string {
	return "ip:" + GetClientIP(r.Context())
}

// RateLimitConfig configura WithRateLimit.
type RateLimitConfig struct {
	Limiter   rate.Limiter
	KeyFunc   RateKeyFunc
	Whitelist []string // paths excluidos (ej: /healthz)
	// OnLimited se llama cuando un request se rechaza (métricas).
	OnLimited func()
}

// WithRateLimit aplica un límite global por key. Si el limiter falla el
// request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPRateKey
	}
	skip := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds()+0.5)))
				}
				if cfg.OnLimited != nil {
					cfg.OnLimited()
				}
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
