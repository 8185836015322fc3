package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError es el error estándar de la capa HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// FromError convierte err en AppError. Lo que no sea AppError (ni error del
// core de auth) termina como 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if mapped := FromAuthError(err); mapped != nil {
		return mapped
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una copia con detalle.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause devuelve una copia con la causa.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// ---- 400 ----

var (
	ErrBadRequest = New(http.StatusBadRequest, "BAD_REQUEST",
		"La solicitud contiene sintaxis inválida o parámetros faltantes.")
	ErrInvalidJSON = New(http.StatusBadRequest, "INVALID_JSON",
		"El cuerpo de la solicitud no es un JSON válido.")
	ErrMissingFields = New(http.StatusBadRequest, "MISSING_FIELDS",
		"Faltan campos requeridos en la solicitud.")
	ErrValidation = New(http.StatusBadRequest, "VALIDATION_ERROR",
		"Uno o más campos no son válidos.")
	ErrBodyTooLarge = New(http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
		"El cuerpo de la solicitud excede el tamaño máximo permitido.")
)

// ---- 401 ----

var (
	ErrUnauthorized = New(http.StatusUnauthorized, "UNAUTHORIZED",
		"No autorizado. Se requiere autenticación.")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS",
		"Email o contraseña inválidos.")
	ErrTwoFactorInvalid = New(http.StatusUnauthorized, "INVALID_2FA_CODE",
		"El código 2FA es inválido.")
	ErrTwoFactorExpired = New(http.StatusUnauthorized, "2FA_EXPIRED",
		"La verificación 2FA expiró, inicie sesión nuevamente.")
)

// ---- 403 ----

var (
	ErrForbidden = New(http.StatusForbidden, "FORBIDDEN",
		"No tiene permisos para realizar esta acción.")
	ErrInvalidCSRF = New(http.StatusForbidden, "INVALID_CSRF_TOKEN",
		"Token CSRF ausente o inválido.")
)

// ---- 404 / 405 ----

var (
	ErrRouteNotFound = New(http.StatusNotFound, "ROUTE_NOT_FOUND",
		"La ruta solicitada no existe.")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		"El método HTTP no está permitido para este recurso.")
)

// ---- 409 ----

var (
	ErrConflict = New(http.StatusConflict, "CONFLICT",
		"La solicitud entra en conflicto con el estado actual del servidor.")
	ErrEmailAlreadyInUse = New(http.StatusConflict, "EMAIL_ALREADY_IN_USE",
		"El correo electrónico ya está registrado.")
	ErrOwnerExists = New(http.StatusConflict, "OWNER_EXISTS",
		"Ya existe un usuario owner.")
)

// ---- 429 ----

var (
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
		"Demasiados intentos. Intente más tarde.")
)

// ---- 5xx ----

var (
	ErrInternalServerError = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR",
		"Ocurrió un error interno en el servidor.")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
		"El servicio no está disponible temporalmente.")
)
