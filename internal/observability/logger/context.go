package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext guarda l en ctx. El middleware de logging lo usa para el logger
// del request.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From devuelve el logger del request o, si no hay, el de proceso.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}
