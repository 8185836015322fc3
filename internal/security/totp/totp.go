package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Period es la duración de cada ventana en segundos (RFC 6238).
	Period = 30
	// Digits es la longitud del código.
	Digits = 6
	// DefaultWindow tolera ±1 paso de drift de reloj.
	DefaultWindow = 1
	// DefaultSecretLength en caracteres base32.
	DefaultSecretLength = 32
	// DefaultBackupCodes es la cantidad de códigos de recuperación por defecto.
	DefaultBackupCodes = 10
	// DefaultQRBase envuelve el otpauth:// para renderizarlo como imagen.
	DefaultQRBase = "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data="
)

var backupCodeRe = regexp.MustCompile(`^\d{4}-\d{4}$`)

// Counter devuelve el time-slice de t.
func Counter(t time.Time) int64 {
	return t.Unix() / Period
}

// GenerateToken calcula el código de 6 dígitos para secret (base32) en el instante t.
func GenerateToken(secret string, t time.Time) string {
	return hotp(DecodeBase32(secret), Counter(t))
}

// Match compara token contra los códigos de t ± window pasos, en tiempo constante.
// Devuelve el contador que matcheó. Un secreto vacío o inválido nunca matchea.
func Match(secret, token string, t time.Time, window int) (counter int64, ok bool) {
	token = strings.TrimSpace(token)
	if len(token) != Digits {
		return 0, false
	}
	key := DecodeBase32(secret)
	if len(key) == 0 {
		return 0, false
	}
	if window < 0 {
		window = 0
	}
	now := Counter(t)
	for c := now - int64(window); c <= now+int64(window); c++ {
		// sin corte temprano: se recorren todas las ventanas
		if subtle.ConstantTimeCompare([]byte(hotp(key, c)), []byte(token)) == 1 && !ok {
			counter, ok = c, true
		}
	}
	return counter, ok
}

// hotp implementa HOTP(K, C) con HMAC-SHA1 y truncado dinámico (RFC 4226).
func hotp(key []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))
	m := hmac.New(sha1.New, key)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", bin%1_000_000)
}

// OTPAuthURL construye otpauth:// para apps de autenticación.
func OTPAuthURL(issuer, account, secret string) string {
	// otpauth://totp/{issuer}:{account}?secret=...&issuer=...&algorithm=SHA1&digits=6&period=30
	label := url.PathEscape(issuer + ":" + account)
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", fmt.Sprint(Digits))
	q.Set("period", fmt.Sprint(Period))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// QRCodeURL envuelve un otpauth:// en la URL del renderizador de QR.
func QRCodeURL(base, otpauth string) string {
	if base == "" {
		base = DefaultQRBase
	}
	return base + url.QueryEscape(otpauth)
}

// ManualEntryKey agrupa el secreto de a 4 caracteres para tipearlo a mano.
func ManualEntryKey(secret string) string {
	secret = Normalize(secret)
	var parts []string
	for len(secret) > 4 {
		parts = append(parts, secret[:4])
		secret = secret[4:]
	}
	if secret != "" {
		parts = append(parts, secret)
	}
	return strings.Join(parts, " ")
}

// ValidBackupCodeFormat reporta si code tiene la forma XXXX-XXXX (dígitos).
func ValidBackupCodeFormat(code string) bool {
	return backupCodeRe.MatchString(code)
}
