package auth

import (
	"context"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/efedauth/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/http/helpers"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/session"
)

// TwoFactorController maneja el enrolamiento TOTP del usuario logueado.
type TwoFactorController struct {
	service Service
}

func NewTwoFactorController(s Service) *TwoFactorController {
	return &TwoFactorController{service: s}
}

// Setup maneja POST /api/auth/2fa/setup. La respuesta contiene el secreto.
func (c *TwoFactorController) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.2fa.setup"))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}
	res, err := c.service.Setup2FA(ctx, sess)
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	helpers.WriteNoStore(w, http.StatusOK, res)
}

// Enable maneja POST /api/auth/2fa/enable.
func (c *TwoFactorController) Enable(w http.ResponseWriter, r *http.Request) {
	c.withCode(w, r, "auth.2fa.enable", "2fa_enabled", c.service.Enable2FA)
}

// Disable maneja POST /api/auth/2fa/disable.
func (c *TwoFactorController) Disable(w http.ResponseWriter, r *http.Request) {
	c.withCode(w, r, "auth.2fa.disable", "2fa_disabled", c.service.Disable2FA)
}

func (c *TwoFactorController) withCode(w http.ResponseWriter, r *http.Request, op, status string,
	fn func(ctx context.Context, sess *session.Session, code string) error) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op(op))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}

	var req dto.CodeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("code is required"))
		return
	}
	if err := fn(ctx, sess, code); err != nil {
		writeServiceError(w, err, log)
		return
	}
	helpers.WriteNoStore(w, http.StatusOK, dto.StatusResponse{Status: status})
}
