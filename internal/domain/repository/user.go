package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/efedauth/internal/domain/types"
)

// User es el registro persistido de un usuario.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         types.Role
	// TwoFASecret es el secreto TOTP en base32. nil <=> 2FA no enrolado.
	TwoFASecret *string
	CreatedAt   time.Time
}

// HasTwoFA reporta si el usuario tiene 2FA enrolado.
func (u *User) HasTwoFA() bool {
	return u != nil && u.TwoFASecret != nil && *u.TwoFASecret != ""
}

// CreateUserInput contiene los datos para insertar un usuario.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	Role         types.Role
}

// UserFields son los campos actualizables. Los punteros nil no se tocan.
type UserFields struct {
	PasswordHash *string
	Role         *types.Role
	TwoFASecret  *string
	// ClearTwoFASecret pone twofa_secret en NULL (tiene prioridad sobre TwoFASecret).
	ClearTwoFASecret bool
}

// IsEmpty reporta si no hay nada que actualizar.
func (f UserFields) IsEmpty() bool {
	return f.PasswordHash == nil && f.Role == nil && f.TwoFASecret == nil && !f.ClearTwoFASecret
}

// UserPredicate filtra usuarios para ExistsWhere. Campos en cero se ignoran;
// los presentes se combinan con AND.
type UserPredicate struct {
	Email string
	Role  types.Role
}

// UserStore es la capacidad de persistencia de usuarios que consume el core.
type UserStore interface {
	// FindByEmail busca por email sin distinguir mayúsculas ("Ana@X.com" y
	// "ana@x.com" son el mismo usuario), igual que la unicidad de Insert.
	// Retorna ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID busca por ID. Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Insert crea el usuario y devuelve su ID.
	// Retorna ErrConflict si el email ya existe.
	Insert(ctx context.Context, in CreateUserInput) (int64, error)

	// UpdateFields actualiza campos y devuelve la cantidad de filas afectadas.
	UpdateFields(ctx context.Context, id int64, f UserFields) (int64, error)

	// ExistsWhere reporta si existe al menos un usuario que cumple el predicado.
	ExistsWhere(ctx context.Context, p UserPredicate) (bool, error)
}
