// Package csrf deriva tokens anti-CSRF ligados a la sesión.
//
// El token no se guarda: se calcula como HMAC-SHA256(appKey, sessionID ++ csrfSecret).
// Si el ID de sesión rota, el token cambia sin necesidad de un nuevo secreto.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	tokens "github.com/dropDatabas3/efedauth/internal/security/token"
)

// SecretBytes es el tamaño del secreto por sesión antes de codificar a hex.
const SecretBytes = 32

// ErrNoKey indica que no hay app key configurada.
var ErrNoKey = errors.New("csrf: empty app key")

// Holder es la vista de la sesión que necesita el deriver.
type Holder interface {
	SessionID() string
	CSRFSecret() string
	SetCSRFSecret(string)
}

type Deriver struct {
	key  []byte
	rand io.Reader
}

// New crea un Deriver con la app key. r nil usa crypto/rand.
func New(appKey []byte, r io.Reader) (*Deriver, error) {
	if len(appKey) == 0 {
		return nil, ErrNoKey
	}
	if r == nil {
		r = rand.Reader
	}
	k := make([]byte, len(appKey))
	copy(k, appKey)
	return &Deriver{key: k, rand: r}, nil
}

// Token devuelve el token de la sesión, creando el secreto si todavía no existe.
func (d *Deriver) Token(s Holder) (string, error) {
	secret := s.CSRFSecret()
	if secret == "" {
		var err error
		secret, err = tokens.RandomHex(d.rand, SecretBytes)
		if err != nil {
			return "", err
		}
		s.SetCSRFSecret(secret)
	}
	return d.derive(s.SessionID(), secret), nil
}

// Verify recalcula el token y compara en tiempo constante. Sin secreto en
// sesión siempre es false.
func (d *Deriver) Verify(s Holder, token string) bool {
	secret := s.CSRFSecret()
	if secret == "" || token == "" {
		return false
	}
	want := d.derive(s.SessionID(), secret)
	return hmac.Equal([]byte(want), []byte(token))
}

func (d *Deriver) derive(sessionID, secret string) string {
	m := hmac.New(sha256.New, d.key)
	_, _ = m.Write([]byte(sessionID))
	_, _ = m.Write([]byte(secret))
	return hex.EncodeToString(m.Sum(nil))
}
