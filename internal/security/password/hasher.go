package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm identifica el KDF usado para nuevos hashes.
type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

// DefaultBcryptCost se usa cuando argon2id no está disponible.
const DefaultBcryptCost = 12

// ErrEmpty se devuelve al intentar hashear un password vacío.
var ErrEmpty = errors.New("empty password")

// Hasher aplica la política de hashing vigente.
type Hasher struct {
	Algorithm  Algorithm
	Argon      Params
	BcryptCost int
}

// NewHasher devuelve la política por defecto: argon2id con Default.
func NewHasher() *Hasher {
	return &Hasher{Algorithm: Argon2id, Argon: Default, BcryptCost: DefaultBcryptCost}
}

func (h *Hasher) algorithm() Algorithm {
	if h.Algorithm == Bcrypt {
		return Bcrypt
	}
	return Argon2id
}

func (h *Hasher) argon() Params {
	if h.Argon == (Params{}) {
		return Default
	}
	return h.Argon
}

func (h *Hasher) cost() int {
	if h.BcryptCost < bcrypt.MinCost {
		return DefaultBcryptCost
	}
	return h.BcryptCost
}

// Hash calcula el hash de plain con el algoritmo vigente.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	if h.algorithm() == Bcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return hashArgon2id(h.argon(), plain)
}

// Verify compara plain contra un hash argon2id o bcrypt. Hashes desconocidos o
// corruptos devuelven false.
func (h *Hasher) Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(plain, encoded)
	case isBcrypt(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
	default:
		return false
	}
}

// NeedsRehash reporta si encoded fue generado con otro algoritmo o parámetros
// distintos de la política actual.
func (h *Hasher) NeedsRehash(encoded string) bool {
	switch h.algorithm() {
	case Argon2id:
		p, err := parsePHC(encoded)
		if err != nil {
			return true
		}
		want := h.argon()
		return p.params.Memory != want.Memory || p.params.Time != want.Time ||
			p.params.Parallelism != want.Parallelism || p.params.KeyLen != want.KeyLen
	default:
		if !isBcrypt(encoded) {
			return true
		}
		c, err := bcrypt.Cost([]byte(encoded))
		return err != nil || c != h.cost()
	}
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
