package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// ETag calcula un ETag fuerte a partir de data (sha256 truncado a 8 bytes).
func ETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

// IfMatchOK valida If-Match contra etag. Acepta "*".
func IfMatchOK(r *http.Request, etag string) bool {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	if v == "" {
		return false
	}
	if v == "*" {
		return true
	}
	return v == etag
}

// IfNoneMatchHit reporta si If-None-Match incluye etag (o "*").
// Compara en forma débil: W/"x" coincide con "x".
func IfNoneMatchHit(r *http.Request, etag string) bool {
	v := strings.TrimSpace(r.Header.Get("If-None-Match"))
	if v == "" {
		return false
	}
	if v == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(v, ",") {
		if strings.TrimPrefix(strings.TrimSpace(tag), "W/") == want {
			return true
		}
	}
	return false
}
