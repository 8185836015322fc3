package logger

import (
	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// Auth

func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }

// Role es el nombre del rol (viewer..owner), no el número.
func Role(v string) zap.Field { return zap.String("role", v) }

// Outcome: ok, 2fa_required, invalid_credentials, invalid_2fa, ...
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Email espera el valor ya enmascarado con util.MaskEmail.
func Email(v string) zap.Field { return zap.String("email", v) }

// Estructura

func Component(v string) zap.Field { return zap.String("component", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// Genéricos

func Count(v int) zap.Field              { return zap.Int("count", v) }
func String(key, v string) zap.Field     { return zap.String(key, v) }
func Int(key string, v int) zap.Field    { return zap.Int(key, v) }
func Any(key string, v any) zap.Field    { return zap.Any(key, v) }
