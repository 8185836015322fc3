// Package audit registra eventos de seguridad (logins, cambios de 2FA, altas de
// usuarios) en el logger "audit", aparte del log operativo.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

// Event identifica el tipo de evento auditado.
type Event string

const (
	LoginSucceeded    Event = "auth.login.succeeded"
	LoginFailed       Event = "auth.login.failed"
	LoginThrottled    Event = "auth.login.throttled"
	TwoFactorEnabled  Event = "auth.2fa.enabled"
	TwoFactorDisabled Event = "auth.2fa.disabled"
	UserCreated       Event = "user.created"
	OwnerSeeded       Event = "user.owner_seeded"
)

// Log escribe el evento con los campos del logger del contexto (request_id, ip).
func Log(ctx context.Context, ev Event, fields ...zap.Field) {
	fs := make([]zap.Field, 0, len(fields)+1)
	fs = append(fs, zap.String("event", string(ev)))
	fs = append(fs, fields...)
	logger.From(ctx).Named("audit").Info(string(ev), fs...)
}
