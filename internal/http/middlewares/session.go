package middlewares

import (
	"net/http"

	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/session"
)

// sessionWriter persiste la sesión justo antes de escribir los headers, para
// que la cookie viaje en la misma respuesta.
type sessionWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (s *sessionWriter) flush() {
	if !s.committed {
		s.committed = true
		s.commit()
	}
}

func (s *sessionWriter) WriteHeader(code int) {
	s.flush()
	s.ResponseWriter.WriteHeader(code)
}

func (s *sessionWriter) Write(b []byte) (int, error) {
	s.flush()
	return s.ResponseWriter.Write(b)
}

func (s *sessionWriter) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// WithSession carga (o crea) la sesión del request y la persiste al responder.
func WithSession(m *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			cookieID := m.IDFromRequest(r)

			sess, err := m.Start(ctx, cookieID)
			if err != nil {
				logger.From(ctx).Error("session start failed", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
				return
			}

			sw := &sessionWriter{ResponseWriter: w}
			sw.commit = func() {
				if err := m.Commit(ctx, w, sess); err != nil {
					logger.From(ctx).Error("session commit failed", logger.Err(err))
				}
			}
			next.ServeHTTP(sw, r.WithContext(WithSessionContext(ctx, sess, cookieID)))
			sw.flush()
		})
	}
}
