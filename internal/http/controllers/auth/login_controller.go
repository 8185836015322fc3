package auth

import (
	"net/http"
	"strings"

	core "github.com/dropDatabas3/efedauth/internal/auth"
	dto "github.com/dropDatabas3/efedauth/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/http/helpers"
	"github.com/dropDatabas3/efedauth/internal/http/middlewares"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/session"
	"go.uber.org/zap"
)

type LoginController struct {
	service Service
	csrf    *csrf.Deriver
}

func NewLoginController(s Service, d *csrf.Deriver) *LoginController {
	return &LoginController{service: s, csrf: d}
}

// Login maneja POST /api/auth/login.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.login"))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email and password are required"))
		return
	}

	res, err := c.service.Login(ctx, sess, middlewares.GetClientIP(ctx), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	c.write(w, sess, res, log)
}

// Verify2FA maneja POST /api/auth/2fa/verify (segundo paso del login).
func (c *LoginController) Verify2FA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.2fa.verify"))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}

	var req dto.CodeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("code is required"))
		return
	}

	res, err := c.service.Verify2FA(ctx, sess, middlewares.GetClientIP(ctx), strings.TrimSpace(req.Code))
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	c.write(w, sess, res, log)
}

func (c *LoginController) write(w http.ResponseWriter, sess *session.Session, res *core.LoginResult, log *zap.Logger) {
	resp := dto.LoginResponse{Status: res.Status, User: res.User}
	if res.Status == core.StatusAuthenticated {
		tok, err := c.csrf.Token(sess)
		if err != nil {
			log.Warn("csrf token after login failed", logger.Err(err))
		}
		resp.CSRFToken = tok
	}
	helpers.WriteNoStore(w, http.StatusOK, resp)
}
