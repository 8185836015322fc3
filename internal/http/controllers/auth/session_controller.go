package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/efedauth/internal/http/dto/auth"
	"github.com/dropDatabas3/efedauth/internal/http/helpers"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
)

type SessionController struct {
	service Service
	csrf    *csrf.Deriver
}

func NewSessionController(s Service, d *csrf.Deriver) *SessionController {
	return &SessionController{service: s, csrf: d}
}

// CSRF maneja GET /api/auth/csrf. Crea el secreto de sesión si no existe.
func (c *SessionController) CSRF(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("auth.csrf"))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}
	tok, err := c.csrf.Token(sess)
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	helpers.WriteNoStore(w, http.StatusOK, dto.CSRFResponse{CSRFToken: tok})
}

// Me maneja GET /api/auth/me.
func (c *SessionController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.me"))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}
	u, err := c.service.RequireAuth(ctx, sess)
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	helpers.WriteNoStore(w, http.StatusOK, dto.MeResponse{User: u})
}

// Logout maneja POST /api/auth/logout. Es idempotente.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(w, r)
	if sess == nil {
		return
	}
	c.service.Logout(r.Context(), sess)
	helpers.WriteNoStore(w, http.StatusOK, dto.StatusResponse{Status: "logged_out"})
}
