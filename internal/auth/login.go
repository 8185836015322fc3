package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/efedauth/internal/audit"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/session"
	"github.com/dropDatabas3/efedauth/internal/util"
)

// Login valida email y password. El rate limit se aplica antes de mirar las
// credenciales. Si el usuario tiene 2FA, la sesión queda en login parcial y se
// devuelve StatusTwoFactorRequired; si no, el login se completa.
func (m *Manager) Login(ctx context.Context, sess *session.Session, clientIP, email, plain string) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.login"), logger.ClientIP(clientIP))
	now := m.now()

	// 1. Rate limit (sesión y, si hay, compartido por IP)
	if err := m.checkLoginLimit(ctx, sess, clientIP); err != nil {
		m.metrics.Login("rate_limited")
		audit.Log(ctx, audit.LoginThrottled, logger.ClientIP(clientIP))
		return nil, err
	}

	// 2. Credenciales: email inexistente y password incorrecto son indistinguibles
	u, err := m.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		m.metrics.Login("error")
		log.Error("user lookup failed", logger.Err(err))
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	if u == nil {
		m.burnHash(plain)
		m.metrics.Login("invalid_credentials")
		audit.Log(ctx, audit.LoginFailed, logger.ClientIP(clientIP), logger.Email(util.MaskEmail(email)), logger.Outcome("invalid_credentials"))
		return nil, ErrInvalidCredentials
	}
	if !m.hasher.Verify(plain, u.PasswordHash) {
		m.metrics.Login("invalid_credentials")
		audit.Log(ctx, audit.LoginFailed, logger.ClientIP(clientIP), logger.UserID(u.ID), logger.Outcome("invalid_credentials"))
		return nil, ErrInvalidCredentials
	}

	// 3. Rehash transparente si la política avanzó
	if m.hasher.NeedsRehash(u.PasswordHash) {
		m.rehash(ctx, u, plain)
	}

	// 4. 2FA: login parcial, sin autenticar la sesión
	if u.HasTwoFA() {
		sess.State.ClearAuth()
		sess.State.PartialLogin = &session.PartialLogin{
			UserID:  u.ID,
			Expires: now.Add(m.cfg.PartialTTL).Unix(),
		}
		m.metrics.Login("2fa_required")
		log.Info("password ok, 2fa required", logger.UserID(u.ID), logger.Outcome("2fa_required"))
		return &LoginResult{Status: StatusTwoFactorRequired, UserID: u.ID}, nil
	}

	if err := m.completeLogin(ctx, sess, clientIP, u); err != nil {
		return nil, err
	}
	m.metrics.Login("ok")
	audit.Log(ctx, audit.LoginSucceeded, logger.ClientIP(clientIP), logger.UserID(u.ID), logger.Role(u.Role.Name()), logger.Outcome("ok"))
	return &LoginResult{Status: StatusAuthenticated, User: NewUserView(u)}, nil
}

// Verify2FA completa un login parcial con el código TOTP.
func (m *Manager) Verify2FA(ctx context.Context, sess *session.Session, clientIP, code string) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.2fa.verify"), logger.ClientIP(clientIP))

	pl := sess.State.PartialLogin
	if pl == nil {
		m.metrics.TwoFactor("verify", "no_partial")
		return nil, ErrInvalidCredentials
	}
	if m.now().Unix() > pl.Expires {
		sess.State.PartialLogin = nil
		m.metrics.TwoFactor("verify", "expired")
		log.Info("partial login expired", logger.UserID(pl.UserID))
		return nil, ErrTwoFactorExpired
	}

	u, err := m.loadUser(ctx, pl.UserID)
	if err != nil {
		log.Error("user lookup failed", logger.Err(err))
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	if u == nil || !u.HasTwoFA() {
		// el usuario se borró o desactivó el 2FA entre pasos: re-login
		sess.State.PartialLogin = nil
		m.metrics.TwoFactor("verify", "stale")
		log.Warn("partial login references missing user or 2fa", logger.UserID(pl.UserID))
		return nil, ErrInvalidCredentials
	}

	if !m.totp.Verify(*u.TwoFASecret, code, m.cfg.TOTPWindow) {
		// LoginMaxAttempts fallos dentro del parcial lo invalidan: hay que
		// volver a pasar por el password (y su límite)
		now, b, key := m.now(), sess.State.Buckets(), twoFactorKey(clientIP)
		b.Check(key, m.cfg.LoginMaxAttempts, m.cfg.PartialTTL, now)
		if b.Count(key, m.cfg.PartialTTL, now) >= m.cfg.LoginMaxAttempts {
			sess.State.PartialLogin = nil
			b.Reset(key)
			m.metrics.TwoFactor("verify", "locked")
			m.metrics.RateLimited("2fa")
			audit.Log(ctx, audit.LoginThrottled, logger.ClientIP(clientIP), logger.UserID(u.ID), logger.Outcome("2fa_attempts_exceeded"))
			return nil, ErrRateLimited
		}
		m.metrics.TwoFactor("verify", "invalid")
		audit.Log(ctx, audit.LoginFailed, logger.ClientIP(clientIP), logger.UserID(u.ID), logger.Outcome("invalid_2fa"))
		return nil, ErrTwoFactorInvalid
	}

	sess.State.PartialLogin = nil
	if err := m.completeLogin(ctx, sess, clientIP, u); err != nil {
		return nil, err
	}
	m.metrics.TwoFactor("verify", "ok")
	m.metrics.Login("ok")
	audit.Log(ctx, audit.LoginSucceeded, logger.ClientIP(clientIP), logger.UserID(u.ID), logger.Role(u.Role.Name()), logger.Outcome("ok"))
	return &LoginResult{Status: StatusAuthenticated, User: NewUserView(u)}, nil
}

// completeLogin rota el ID de sesión y registra el login completo.
func (m *Manager) completeLogin(ctx context.Context, sess *session.Session, clientIP string, u *repository.User) error {
	now := m.now()
	if err := sess.Regenerate(now); err != nil {
		return fmt.Errorf("auth: regenerate session: %w", err)
	}
	sess.State.PartialLogin = nil
	sess.State.Pending2FASecret = ""
	sess.State.UserID = u.ID
	sess.State.UserRole = u.Role
	sess.State.LoginTime = now.Unix()
	sess.State.LastActivity = now.Unix()

	sess.State.Buckets().Reset(loginKey(clientIP))
	sess.State.Buckets().Reset(twoFactorKey(clientIP))
	if m.shared != nil {
		if err := m.shared.Reset(ctx, loginKey(clientIP)); err != nil {
			logger.From(ctx).Warn("shared limiter reset failed", logger.Err(err))
		}
	}
	return nil
}

func (m *Manager) checkLoginLimit(ctx context.Context, sess *session.Session, clientIP string) error {
	key := loginKey(clientIP)
	if !sess.State.Buckets().Check(key, m.cfg.LoginMaxAttempts, m.cfg.LoginWindow, m.now()) {
		m.metrics.RateLimited("session")
		return ErrRateLimited
	}
	if m.shared == nil {
		return nil
	}
	res, err := m.shared.AllowWithLimits(ctx, key, m.cfg.LoginMaxAttempts, m.cfg.LoginWindow)
	if err != nil {
		// sin backend compartido queda el límite de sesión
		logger.From(ctx).Warn("shared limiter unavailable", logger.Err(err))
		return nil
	}
	if !res.Allowed {
		m.metrics.RateLimited("shared")
		return ErrRateLimited
	}
	return nil
}

func (m *Manager) rehash(ctx context.Context, u *repository.User, plain string) {
	h, err := m.hasher.Hash(plain)
	if err != nil {
		logger.From(ctx).Warn("rehash failed", logger.UserID(u.ID), logger.Err(err))
		return
	}
	if _, err := m.users.UpdateFields(ctx, u.ID, repository.UserFields{PasswordHash: &h}); err != nil {
		logger.From(ctx).Warn("rehash store failed", logger.UserID(u.ID), logger.Err(err))
		return
	}
	u.PasswordHash = h
}

// Logout destruye la sesión.
func (m *Manager) Logout(ctx context.Context, sess *session.Session) {
	if sess.State.LoggedIn() {
		m.metrics.SessionEnded("logout")
		logger.From(ctx).Info("logout", logger.UserID(sess.State.UserID))
	}
	sess.Destroy()
}

// IsAuthenticated reporta si la sesión tiene un login completo vigente.
// Ojo: no es de solo lectura. Si la sesión venció la destruye, y si está
// vigente renueva last_activity.
func (m *Manager) IsAuthenticated(ctx context.Context, sess *session.Session) bool {
	st := &sess.State
	if !st.LoggedIn() || st.PartialLogin != nil {
		return false
	}
	now := m.now().Unix()
	if now-st.LastActivity > int64(m.cfg.SessionLifetime.Seconds()) {
		m.metrics.SessionEnded("expired")
		logger.From(ctx).Info("session expired", logger.UserID(st.UserID))
		sess.Destroy()
		return false
	}
	st.LastActivity = now
	return true
}

// HasRole reporta si la sesión está autenticada con rol >= n. Usa el rol
// cacheado al momento del login.
func (m *Manager) HasRole(ctx context.Context, sess *session.Session, n types.Role) bool {
	return m.IsAuthenticated(ctx, sess) && sess.State.UserRole.AtLeast(n)
}

// CurrentUser devuelve el usuario de la sesión leído del store, o nil si no
// hay login vigente.
func (m *Manager) CurrentUser(ctx context.Context, sess *session.Session) (*UserView, error) {
	u, err := m.currentUser(ctx, sess)
	if err != nil || u == nil {
		return nil, err
	}
	return NewUserView(u), nil
}

func (m *Manager) currentUser(ctx context.Context, sess *session.Session) (*repository.User, error) {
	if !m.IsAuthenticated(ctx, sess) {
		return nil, nil
	}
	u, err := m.loadUser(ctx, sess.State.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	if u == nil {
		// sesión apuntando a un usuario borrado
		logger.From(ctx).Warn("session references missing user", logger.UserID(sess.State.UserID))
		sess.Destroy()
	}
	return u, nil
}

// RequireAuth falla con ErrUnauthorized si no hay login vigente.
func (m *Manager) RequireAuth(ctx context.Context, sess *session.Session) (*UserView, error) {
	u, err := m.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	return NewUserView(u), nil
}

func (m *Manager) requireUser(ctx context.Context, sess *session.Session) (*repository.User, error) {
	u, err := m.currentUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// RequireRole es RequireAuth más ErrForbidden si el rol cacheado es menor a n.
func (m *Manager) RequireRole(ctx context.Context, sess *session.Session, n types.Role) (*UserView, error) {
	u, err := m.RequireAuth(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !sess.State.UserRole.AtLeast(n) {
		return nil, ErrForbidden
	}
	return u, nil
}
