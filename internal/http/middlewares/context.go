package middlewares

import (
	"context"

	"github.com/dropDatabas3/efedauth/internal/session"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxClientIPKey  ctxKey = "client_ip"
	ctxSessionKey   ctxKey = "session"
)

type sessionEntry struct {
	sess *session.Session
	// cookieID es el ID con el que llegó el request, antes de cualquier rotación.
	cookieID string
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

func setClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxClientIPKey, ip)
}

// WithSessionContext inyecta la sesión en ctx. Lo usa WithSession y los tests.
func WithSessionContext(ctx context.Context, s *session.Session, cookieID string) context.Context {
	return context.WithValue(ctx, ctxSessionKey, &sessionEntry{sess: s, cookieID: cookieID})
}

// GetRequestID devuelve el request ID o "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// GetClientIP devuelve la IP resuelta por WithClientIP o "".
func GetClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ctxClientIPKey).(string); ok {
		return v
	}
	return ""
}

// GetSession devuelve la sesión del request o nil si WithSession no se aplicó.
func GetSession(ctx context.Context) *session.Session {
	if e, ok := ctx.Value(ctxSessionKey).(*sessionEntry); ok {
		return e.sess
	}
	return nil
}

func getCookieID(ctx context.Context) string {
	if e, ok := ctx.Value(ctxSessionKey).(*sessionEntry); ok {
		return e.cookieID
	}
	return ""
}
