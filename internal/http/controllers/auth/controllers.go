// Package auth contiene los controllers de /api/auth.
package auth

import (
	"context"
	"net/http"
	"time"

	core "github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/http/middlewares"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/session"
	"go.uber.org/zap"
)

// Service es lo que los controllers usan del core. *auth.Manager lo implementa.
type Service interface {
	Login(ctx context.Context, sess *session.Session, clientIP, email, plain string) (*core.LoginResult, error)
	Verify2FA(ctx context.Context, sess *session.Session, clientIP, code string) (*core.LoginResult, error)
	Logout(ctx context.Context, sess *session.Session)
	RequireAuth(ctx context.Context, sess *session.Session) (*core.UserView, error)
	Setup2FA(ctx context.Context, sess *session.Session) (*core.SetupResult, error)
	Enable2FA(ctx context.Context, sess *session.Session, code string) error
	Disable2FA(ctx context.Context, sess *session.Session, code string) error
	CreateUser(ctx context.Context, sess *session.Session, email, plain string, role types.Role) (*core.UserView, error)
	SeedOwner(ctx context.Context, email, plain string) (*core.UserView, error)
}

var _ Service = (*core.Manager)(nil)

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Session   *SessionController
	Login     *LoginController
	TwoFactor *TwoFactorController
	Users     *UsersController
	Roles     *RolesController
}

func NewControllers(s Service, d *csrf.Deriver, startedAt time.Time) *Controllers {
	return &Controllers{
		Session:   NewSessionController(s, d),
		Login:     NewLoginController(s, d),
		TwoFactor: NewTwoFactorController(s),
		Users:     NewUsersController(s),
		Roles:     NewRolesController(startedAt),
	}
}

// requestSession devuelve la sesión o escribe 500 si falta el middleware.
func requestSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := middlewares.GetSession(r.Context())
	if sess == nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithDetail("session not loaded"))
	}
	return sess
}

// writeServiceError mapea errores del core; los 5xx se loguean con la causa.
func writeServiceError(w http.ResponseWriter, err error, log *zap.Logger) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("unexpected error", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}
