package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
// Se usa para los IDs de sesión.
func GenerateOpaqueToken(nBytes int) (string, error) {
	return OpaqueFrom(rand.Reader, nBytes)
}

// OpaqueFrom es GenerateOpaqueToken con una fuente de aleatoriedad inyectada.
func OpaqueFrom(r io.Reader, nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomHex devuelve nBytes aleatorios en hexadecimal (2*nBytes caracteres).
func RandomHex(r io.Reader, nBytes int) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, nBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SHA256Hex devuelve sha256(input) en hexadecimal (keys de sesión en Redis).
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}
