package totp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/dropDatabas3/efedauth/internal/clock"
)

// Engine agrupa las operaciones TOTP que dependen de reloj y aleatoriedad.
type Engine struct {
	clock  clock.Clock
	rand   io.Reader
	QRBase string
}

// NewEngine crea un Engine. nil usa el reloj del sistema y crypto/rand.
func NewEngine(c clock.Clock, r io.Reader) *Engine {
	if r == nil {
		r = rand.Reader
	}
	return &Engine{clock: clock.OrSystem(c), rand: r, QRBase: DefaultQRBase}
}

// GenerateSecret devuelve n caracteres uniformes del alfabeto base32.
func (e *Engine) GenerateSecret(n int) (string, error) {
	if n <= 0 {
		n = DefaultSecretLength
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(e.rand, raw); err != nil {
		return "", fmt.Errorf("totp: random: %w", err)
	}
	out := make([]byte, n)
	for i, b := range raw {
		// 256 es múltiplo de 32: sin sesgo
		out[i] = alphabet[b&31]
	}
	return string(out), nil
}

// Token devuelve el código actual para secret.
func (e *Engine) Token(secret string) string {
	return GenerateToken(secret, e.clock.Now())
}

// Verify acepta token si coincide con la ventana actual o ±window pasos.
func (e *Engine) Verify(secret, token string, window int) bool {
	_, ok := Match(secret, token, e.clock.Now(), window)
	return ok
}

// QRCodeURL construye la URL de QR de aprovisionamiento para user.
func (e *Engine) QRCodeURL(user, secret, issuer string) string {
	return QRCodeURL(e.QRBase, OTPAuthURL(issuer, user, secret))
}

var backupSpace = big.NewInt(100_000_000)

// GenerateBackupCodes devuelve n códigos de recuperación "XXXX-XXXX".
func (e *Engine) GenerateBackupCodes(n int) ([]string, error) {
	if n <= 0 {
		n = DefaultBackupCodes
	}
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(e.rand, backupSpace)
		if err != nil {
			return nil, fmt.Errorf("totp: random: %w", err)
		}
		s := fmt.Sprintf("%08d", v.Int64())
		codes = append(codes, s[:4]+"-"+s[4:])
	}
	return codes, nil
}
