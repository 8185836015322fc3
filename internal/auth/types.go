package auth

import (
	"time"

	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
)

// Status es el resultado de un paso de login.
type Status string

const (
	StatusAuthenticated     Status = "authenticated"
	StatusTwoFactorRequired Status = "2fa_required"
)

// UserView es la representación pública de un usuario. Nunca incluye el hash
// ni el secreto TOTP.
type UserView struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	RoleName  string     `json:"role_name"`
	Has2FA    bool       `json:"has_2fa"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewUserView arma la vista pública de u.
func NewUserView(u *repository.User) *UserView {
	return &UserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		RoleName:  u.Role.Name(),
		Has2FA:    u.HasTwoFA(),
		CreatedAt: u.CreatedAt,
	}
}

// LoginResult es la respuesta de Login y Verify2FA. Con StatusTwoFactorRequired
// User es nil y UserID indica a quién pertenece el login parcial.
type LoginResult struct {
	Status Status    `json:"status"`
	User   *UserView `json:"user,omitempty"`
	UserID int64     `json:"user_id,omitempty"`
}

// SetupResult es lo que necesita el cliente para enrolar una app TOTP.
type SetupResult struct {
	Secret     string `json:"secret"`
	ManualKey  string `json:"manual_key"`
	OTPAuthURL string `json:"otpauth_url"`
	QRURL      string `json:"qr_url"`
}
