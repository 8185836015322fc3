package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
)

const (
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"

	maxCSRFPeek = 64 << 10
)

// holder presenta el ID original del request al deriver, para aceptar tokens
// emitidos antes de una rotación en este mismo request.
type holder struct {
	id     string
	secret string
}

func (h holder) SessionID() string    { return h.id }
func (h holder) CSRFSecret() string   { return h.secret }
func (h holder) SetCSRFSecret(string) {}

func isUnsafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// WithCSRF exige el token derivado de la sesión en métodos inseguros. El token
// viaja en X-CSRF-Token o en el campo csrf_token (form o JSON). Requiere
// WithSession antes en la cadena.
func WithCSRF(d *csrf.Deriver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil {
				httperrors.WriteError(w, httperrors.ErrInternalServerError.WithDetail("session middleware missing"))
				return
			}

			// el ID rotó al cargar la sesión: el cliente necesita el token nuevo
			cookieID := getCookieID(r.Context())
			if cookieID != "" && cookieID != sess.ID() && sess.CSRFSecret() != "" {
				if tok, err := d.Token(sess); err == nil {
					w.Header().Set(CSRFHeader, tok)
				}
			}

			if !isUnsafe(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			tok := requestToken(r)
			ok := d.Verify(sess, tok)
			if !ok && cookieID != "" && !sess.IsNew() {
				ok = d.Verify(holder{id: cookieID, secret: sess.CSRFSecret()}, tok)
			}
			if !ok {
				logger.From(r.Context()).Warn("csrf check failed")
				httperrors.WriteError(w, httperrors.ErrInvalidCSRF)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestToken busca el token en el header y, si no está, en el body. El body
// se repone para el handler.
func requestToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(CSRFHeader)); v != "" {
		return v
	}
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	switch {
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		return strings.TrimSpace(r.PostFormValue(CSRFField))
	case strings.Contains(ct, "application/json"):
		if r.Body == nil {
			return ""
		}
		var buf bytes.Buffer
		_, _ = io.CopyN(&buf, r.Body, maxCSRFPeek)
		rest := r.Body
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(buf.Bytes()), rest), rest}

		var tmp map[string]any
		if err := json.Unmarshal(buf.Bytes(), &tmp); err == nil {
			if s, ok := tmp[CSRFField].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
