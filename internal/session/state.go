package session

import (
	"github.com/dropDatabas3/efedauth/internal/domain/types"
	"github.com/dropDatabas3/efedauth/internal/rate"
)

// PartialLogin marca una sesión que pasó el password pero todavía debe
// presentar el código TOTP. Expires es unix segundos.
type PartialLogin struct {
	UserID  int64 `json:"user_id"`
	Expires int64 `json:"expires"`
}

// State es todo lo que se persiste por sesión. Los tiempos son unix segundos.
type State struct {
	UserID       int64      `json:"user_id,omitempty"`
	UserRole     types.Role `json:"user_role,omitempty"`
	LoginTime    int64      `json:"login_time,omitempty"`
	LastActivity int64      `json:"last_activity,omitempty"`

	CSRFSecret string       `json:"csrf_secret,omitempty"`
	RateLimits rate.Buckets `json:"rate_limits,omitempty"`

	PartialLogin     *PartialLogin `json:"partial_login,omitempty"`
	Pending2FASecret string        `json:"pending_2fa_secret,omitempty"`

	LastRegeneration int64 `json:"last_regeneration"`
	CreatedAt        int64 `json:"created_at"`
}

// LoggedIn reporta si hay un login completo registrado (no valida expiración).
func (s *State) LoggedIn() bool {
	return s.UserID != 0 && s.LoginTime != 0
}

// ClearAuth borra los datos de login completo y parcial.
func (s *State) ClearAuth() {
	s.UserID = 0
	s.UserRole = 0
	s.LoginTime = 0
	s.LastActivity = 0
	s.PartialLogin = nil
	s.Pending2FASecret = ""
}

// Buckets devuelve los buckets de rate limit, creándolos si hace falta.
func (s *State) Buckets() rate.Buckets {
	if s.RateLimits == nil {
		s.RateLimits = rate.Buckets{}
	}
	return s.RateLimits
}
