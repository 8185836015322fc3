// Package auth implementa el core de autenticación: máquina de estados de login
// (password, 2FA parcial, login completo), autorización por rol, flujos de
// enrolamiento TOTP y alta de usuarios.
//
// El estado vive en session.Session; Manager no guarda estado por usuario.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/metrics"
	"github.com/dropDatabas3/efedauth/internal/rate"
	"github.com/dropDatabas3/efedauth/internal/security/password"
	"github.com/dropDatabas3/efedauth/internal/security/totp"
)

// Config agrupa los límites y tiempos del core.
type Config struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
	PartialTTL       time.Duration // tiempo para completar el 2FA
	SessionLifetime  time.Duration // inactividad máxima
	Issuer           string        // issuer en el otpauth://
	TOTPWindow       int
	SecretLength     int
}

// DefaultConfig: 5 intentos / 5 min, 5 min para el 2FA, 1h de inactividad.
func DefaultConfig() Config {
	return Config{
		LoginMaxAttempts: 5,
		LoginWindow:      300 * time.Second,
		PartialTTL:       300 * time.Second,
		SessionLifetime:  time.Hour,
		Issuer:           "Efed CMS",
		TOTPWindow:       totp.DefaultWindow,
		SecretLength:     totp.DefaultSecretLength,
	}
}

// Deps son las dependencias del Manager.
type Deps struct {
	Users     repository.UserStore
	Hasher    *password.Hasher
	TOTP      *totp.Engine
	Clock     clock.Clock
	Policy    password.Policy
	Blacklist *password.Blacklist
	// Shared es opcional: límite de login por IP compartido entre sesiones.
	Shared  rate.MultiLimiter
	Metrics *metrics.Metrics
	Config  Config
}

type Manager struct {
	users     repository.UserStore
	hasher    *password.Hasher
	totp      *totp.Engine
	clock     clock.Clock
	policy    password.Policy
	blacklist *password.Blacklist
	shared    rate.MultiLimiter
	metrics   *metrics.Metrics
	cfg       Config

	dummyOnce sync.Once
	dummyHash string
}

// NewManager crea el Manager. Los campos vacíos de Deps toman valores por defecto.
func NewManager(d Deps) *Manager {
	def := DefaultConfig()
	cfg := d.Config
	if cfg.LoginMaxAttempts <= 0 {
		cfg.LoginMaxAttempts = def.LoginMaxAttempts
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = def.LoginWindow
	}
	if cfg.PartialTTL <= 0 {
		cfg.PartialTTL = def.PartialTTL
	}
	if cfg.SessionLifetime <= 0 {
		cfg.SessionLifetime = def.SessionLifetime
	}
	if cfg.Issuer == "" {
		cfg.Issuer = def.Issuer
	}
	if cfg.TOTPWindow < 0 {
		cfg.TOTPWindow = def.TOTPWindow
	}
	if cfg.SecretLength <= 0 {
		cfg.SecretLength = def.SecretLength
	}

	c := clock.OrSystem(d.Clock)
	h := d.Hasher
	if h == nil {
		h = password.NewHasher()
	}
	eng := d.TOTP
	if eng == nil {
		eng = totp.NewEngine(c, nil)
	}
	pol := d.Policy
	if pol.MinLength == 0 {
		pol = password.DefaultPolicy
	}

	return &Manager{
		users:     d.Users,
		hasher:    h,
		totp:      eng,
		clock:     c,
		policy:    pol,
		blacklist: d.Blacklist,
		shared:    d.Shared,
		metrics:   d.Metrics,
		cfg:       cfg,
	}
}

// Config devuelve la configuración efectiva.
func (m *Manager) Config() Config { return m.cfg }

func loginKey(clientIP string) string { return "login_" + clientIP }

// twoFactorKey cuenta los códigos 2FA fallidos de un login parcial.
func twoFactorKey(clientIP string) string { return "2fa_" + clientIP }

// burnHash iguala el costo de un login con email inexistente al de uno con
// password incorrecto.
func (m *Manager) burnHash(plain string) {
	m.dummyOnce.Do(func() {
		m.dummyHash, _ = m.hasher.Hash("efed-dummy-password")
	})
	_ = m.hasher.Verify(plain, m.dummyHash)
}

func (m *Manager) loadUser(ctx context.Context, id int64) (*repository.User, error) {
	u, err := m.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (m *Manager) now() time.Time { return m.clock.Now() }
