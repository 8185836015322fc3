package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Taxonomía de errores del core. El detalle se agrega con fmt.Errorf("%w: ...")
// y se compara con errors.Is.
var (
	ErrRateLimited        = errors.New("too many attempts, please try again later")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTwoFactorExpired   = errors.New("2fa verification expired, please login again")
	ErrTwoFactorInvalid   = errors.New("invalid 2fa code")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
)

var (
	ErrTwoFactorNotPending = fmt.Errorf("%w: no pending 2fa setup found", ErrValidation)
	ErrTwoFactorNotEnabled = fmt.Errorf("%w: 2fa is not enabled", ErrValidation)
	ErrOwnerExists         = fmt.Errorf("%w: owner user already exists", ErrConflict)
	ErrEmailTaken          = fmt.Errorf("%w: email already exists", ErrConflict)
)

// PolicyError detalla por qué un password no cumple la política.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: password policy: %s", ErrValidation, strings.Join(e.Reasons, ", "))
}

func (e *PolicyError) Unwrap() error { return ErrValidation }
