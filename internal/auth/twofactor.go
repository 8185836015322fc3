package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/efedauth/internal/audit"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/security/totp"
	"github.com/dropDatabas3/efedauth/internal/session"
)

// Setup2FA genera un secreto nuevo y lo deja pendiente en la sesión. No toca
// el usuario hasta Enable2FA. Llamarlo de nuevo reemplaza el pendiente.
func (m *Manager) Setup2FA(ctx context.Context, sess *session.Session) (*SetupResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.2fa.setup"))

	u, err := m.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	secret, err := m.totp.GenerateSecret(m.cfg.SecretLength)
	if err != nil {
		log.Error("secret generation failed", logger.Err(err))
		return nil, fmt.Errorf("auth: generate secret: %w", err)
	}
	sess.State.Pending2FASecret = secret

	m.metrics.TwoFactor("setup", "ok")
	log.Info("2fa setup started", logger.UserID(u.ID))
	return &SetupResult{
		Secret:     secret,
		ManualKey:  totp.ManualEntryKey(secret),
		OTPAuthURL: totp.OTPAuthURL(m.cfg.Issuer, u.Email, secret),
		QRURL:      m.totp.QRCodeURL(u.Email, secret, m.cfg.Issuer),
	}, nil
}

// Enable2FA confirma el secreto pendiente con un código y lo persiste. Si el
// código no valida, el pendiente se conserva para reintentar.
func (m *Manager) Enable2FA(ctx context.Context, sess *session.Session, code string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.2fa.enable"))

	u, err := m.requireUser(ctx, sess)
	if err != nil {
		return err
	}
	secret := sess.State.Pending2FASecret
	if secret == "" {
		return ErrTwoFactorNotPending
	}
	if !m.totp.Verify(secret, code, m.cfg.TOTPWindow) {
		m.metrics.TwoFactor("enable", "invalid")
		return ErrTwoFactorInvalid
	}
	if _, err := m.users.UpdateFields(ctx, u.ID, repository.UserFields{TwoFASecret: &secret}); err != nil {
		log.Error("persist 2fa secret failed", logger.UserID(u.ID), logger.Err(err))
		return fmt.Errorf("auth: enable 2fa: %w", err)
	}
	sess.State.Pending2FASecret = ""

	m.metrics.TwoFactor("enable", "ok")
	audit.Log(ctx, audit.TwoFactorEnabled, logger.UserID(u.ID))
	return nil
}

// Disable2FA borra el secreto del usuario. Requiere un código vigente.
func (m *Manager) Disable2FA(ctx context.Context, sess *session.Session, code string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.2fa.disable"))

	u, err := m.requireUser(ctx, sess)
	if err != nil {
		return err
	}
	if !u.HasTwoFA() {
		return ErrTwoFactorNotEnabled
	}
	if !m.totp.Verify(*u.TwoFASecret, code, m.cfg.TOTPWindow) {
		m.metrics.TwoFactor("disable", "invalid")
		return ErrTwoFactorInvalid
	}
	if _, err := m.users.UpdateFields(ctx, u.ID, repository.UserFields{ClearTwoFASecret: true}); err != nil {
		log.Error("clear 2fa secret failed", logger.UserID(u.ID), logger.Err(err))
		return fmt.Errorf("auth: disable 2fa: %w", err)
	}

	m.metrics.TwoFactor("disable", "ok")
	audit.Log(ctx, audit.TwoFactorDisabled, logger.UserID(u.ID))
	return nil
}
