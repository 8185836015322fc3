package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSep   = regexp.MustCompile(`[^a-z0-9]+`)
	slugValid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// GenerateSlug pasa a minúsculas, quita acentos y reemplaza todo lo que no sea
// [a-z0-9] por un guión. "Éxito Total!" -> "exito-total".
func GenerateSlug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	slug := slugSep.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// ValidSlug reporta si s ya es un slug canónico.
func ValidSlug(s string) bool {
	return slugValid.MatchString(s)
}
