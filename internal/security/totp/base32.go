package totp

import (
	"encoding/base32"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeBase32 codifica raw con el alfabeto RFC 4648, sin padding.
func EncodeBase32(raw []byte) string {
	return b32.EncodeToString(raw)
}

// DecodeBase32 decodifica un secreto de forma tolerante: pasa a mayúsculas,
// descarta todo carácter fuera de [A-Z2-7] y tira los bits sobrantes del final.
// Nunca falla; un secreto sin caracteres válidos devuelve un slice vacío.
func DecodeBase32(s string) []byte {
	s = upperASCII(s)
	out := make([]byte, 0, len(s)*5/8)
	var buf uint32
	var bits uint
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(alphabet, s[i])
		if v < 0 {
			continue
		}
		buf = buf<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
			buf &= 1<<bits - 1
		}
	}
	return out
}

// Normalize deja solo los caracteres válidos del alfabeto, en mayúsculas.
func Normalize(s string) string {
	s = upperASCII(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) >= 0 {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// upperASCII pasa a mayúsculas solo a-z. strings.ToUpper pliega Unicode
// ("ſ" -> "S", "ı" -> "I") y metería letras que no estaban en el secreto.
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
