package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

// parseSameSite convierte el string de config a http.SameSite.
// Acepta: "", "lax", "strict", "none" (case-insensitive). Default: Strict.
func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		logger.L().Warn("cookie: unknown SameSite, using Strict", logger.String("same_site", s))
		return http.SameSiteStrictMode
	}
}

// BuildSessionCookie construye la cookie de sesión con flags de seguridad.
func BuildSessionCookie(name, value, domain, sameSite string, secure bool, ttl time.Duration, now time.Time) *http.Cookie {
	ss := parseSameSite(sameSite)
	if ss == http.SameSiteNoneMode && !secure {
		logger.L().Warn("cookie: SameSite=None without Secure; browsers may reject it", logger.String("domain", domain))
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		Expires:  now.Add(ttl).UTC(),
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: ss,
	}
}

// BuildDeletionCookie devuelve una cookie que borra la sesión del browser.
// Usa mismo name/domain/samesite/secure para que el user-agent la sobreescriba.
func BuildDeletionCookie(name, domain, sameSite string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: parseSameSite(sameSite),
	}
}
