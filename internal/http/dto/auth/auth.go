// Package auth contiene los DTOs de /api/auth.
package auth

import (
	"bytes"
	"encoding/json"
	"strconv"

	core "github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse: con status "2fa_required" user va vacío y el cliente sigue
// con /2fa/verify. csrf_token viene solo con login completo (el ID de sesión rotó).
type LoginResponse struct {
	Status    core.Status    `json:"status"`
	User      *core.UserView `json:"user,omitempty"`
	CSRFToken string         `json:"csrf_token,omitempty"`
}

type CodeRequest struct {
	Code string `json:"code"`
}

type CSRFResponse struct {
	CSRFToken string `json:"csrf_token"`
}

type MeResponse struct {
	User *core.UserView `json:"user"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type SeedRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     RoleInput `json:"role"`
}

type UserResponse struct {
	User *core.UserView `json:"user"`
}

// RoleInput acepta el rol como número (1..5) o como nombre ("editor").
// Nombres desconocidos quedan en 0 y los rechaza la validación del core.
type RoleInput types.Role

func (r *RoleInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		if n, err := strconv.Atoi(name); err == nil {
			*r = RoleInput(n)
			return nil
		}
		role, _ := types.LookupRole(name)
		*r = RoleInput(role)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = RoleInput(n)
	return nil
}

type RoleItem struct {
	ID   types.Role `json:"id"`
	Name string     `json:"name"`
}

type RolesResponse struct {
	Roles []RoleItem `json:"roles"`
}
