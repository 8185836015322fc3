package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

// Default: 64 MiB, 4 iteraciones, 3 hilos.
var Default = Params{Memory: 64 * 1024, Time: 4, Parallelism: 3, KeyLen: 32}

const saltLen = 16

var errMalformedPHC = errors.New("malformed argon2id hash")

// hashArgon2id devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func hashArgon2id(p Params, plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

type phc struct {
	params Params
	salt   []byte
	dk     []byte
}

// parsePHC separa el string por '$'. Formato: ["", "argon2id", "v=19", "m=..,t=..,p=..", salt, dk]
func parsePHC(s string) (*phc, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, errMalformedPHC
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return nil, errMalformedPHC
	}
	var out phc
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errMalformedPHC
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, errMalformedPHC
		}
		switch k {
		case "m":
			out.params.Memory = uint32(n)
		case "t":
			out.params.Time = uint32(n)
		case "p":
			if n > 255 {
				return nil, errMalformedPHC
			}
			out.params.Parallelism = uint8(n)
		default:
			return nil, errMalformedPHC
		}
	}
	if out.params.Memory == 0 || out.params.Time == 0 || out.params.Parallelism == 0 {
		return nil, errMalformedPHC
	}
	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errMalformedPHC
	}
	if out.dk, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.dk) == 0 {
		return nil, errMalformedPHC
	}
	out.params.KeyLen = uint32(len(out.dk))
	return &out, nil
}

func verifyArgon2id(plain, encoded string) bool {
	h, err := parsePHC(encoded)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(plain), h.salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLen)
	return subtle.ConstantTimeCompare(key, h.dk) == 1
}
