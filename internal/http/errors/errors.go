// Package errors define AppError y su serialización JSON para la capa HTTP.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dropDatabas3/efedauth/internal/auth"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError serializa err. La causa interna nunca se expone al cliente.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		RequestID: w.Header().Get("X-Request-ID"),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// FromAuthError traduce la taxonomía de internal/auth. Devuelve nil si err no
// pertenece a ella.
func FromAuthError(err error) *AppError {
	var pe *auth.PolicyError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrRateLimited):
		return ErrRateLimitExceeded
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, auth.ErrTwoFactorExpired):
		return ErrTwoFactorExpired
	case errors.Is(err, auth.ErrTwoFactorInvalid):
		return ErrTwoFactorInvalid
	case errors.Is(err, auth.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return ErrForbidden.WithDetail(detail(err, auth.ErrForbidden))
	case errors.As(err, &pe):
		return ErrValidation.WithDetail(err.Error())
	case errors.Is(err, auth.ErrValidation):
		return ErrValidation.WithDetail(detail(err, auth.ErrValidation))
	case errors.Is(err, auth.ErrOwnerExists):
		return ErrOwnerExists
	case errors.Is(err, auth.ErrEmailTaken):
		return ErrEmailAlreadyInUse
	case errors.Is(err, auth.ErrConflict):
		return ErrConflict
	}
	return nil
}

// detail devuelve el mensaje envuelto si agrega algo al sentinel.
func detail(err, sentinel error) string {
	if err.Error() == sentinel.Error() {
		return ""
	}
	return err.Error()
}
