package util

import "strings"

// MaskEmail deja ver solo la primera letra del usuario y del primer label del
// dominio: "Ana@Example.com" -> "a…@e….com". Para logs.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" {
		return maskOpaque(s)
	}
	host, rest, hasDot := strings.Cut(domain, ".")
	out := keepFirst(local) + "@" + keepFirst(host)
	if hasDot {
		out += "." + rest
	}
	return out
}

func keepFirst(s string) string {
	r := []rune(s)
	if len(r) <= 1 {
		return s
	}
	return string(r[0]) + "…"
}

// maskOpaque enmascara algo que no parece un email.
func maskOpaque(s string) string {
	r := []rune(s)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 3:
		return "***"
	default:
		return string(r[0]) + "…" + string(r[len(r)-1])
	}
}
