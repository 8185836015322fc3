package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "[redacted]"

// sensitiveKeys no deben llegar nunca a un log en claro.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"secret":        {},
	"twofa_secret":  {},
	"token":         {},
	"csrf_token":    {},
	"code":          {},
	"app_key":       {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redactCore tapa los campos sensibles, tanto los de With como los de cada entrada.
type redactCore struct {
	zapcore.Core
}

func redact(c zapcore.Core) zapcore.Core { return &redactCore{Core: c} }

func scrub(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if !isSensitive(f.Key) {
			continue
		}
		if out == nil {
			out = append([]zapcore.Field(nil), fields...)
		}
		out[i] = zap.String(f.Key, redacted)
	}
	if out == nil {
		return fields
	}
	return out
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(scrub(fields))}
}

func (c *redactCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *redactCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(e, scrub(fields))
}
