// Package helpers agrupa utilidades HTTP sin estado: JSON, ETag, cache
// condicional e IP del cliente.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
)

// MaxBodyBytes limita los bodies JSON de la API.
const MaxBodyBytes = 64 << 10

// ReadJSON decodifica el body en v de forma tolerante (acepta campos extra).
// Devuelve false si ya escribió la respuesta de error.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("Content-Type debe ser application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return false
		}
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return false
	}
	return true
}

// WriteJSON escribe v como JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteNoStore es WriteJSON para respuestas con secretos o estado de sesión.
func WriteNoStore(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	WriteJSON(w, status, v)
}
