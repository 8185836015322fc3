package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger de proceso.
type Config struct {
	Env         string // "prod" => JSON; resto => consola
	Level       string // debug | info | warn | error (default info)
	ServiceName string
	Version     string

	// Output reemplaza stderr (tests).
	Output zapcore.WriteSyncer
}

func build(cfg Config) *zap.Logger {
	prod := strings.EqualFold(strings.TrimSpace(cfg.Env), "prod")

	enc := zap.NewDevelopmentEncoderConfig()
	if prod {
		enc = zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString(t.Format("15:04:05.000"))
		}
	}
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	if prod {
		encoder = zapcore.NewJSONEncoder(enc)
	} else {
		encoder = zapcore.NewConsoleEncoder(enc)
	}

	out := cfg.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	core := redact(zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(parseLevel(cfg.Level))))
	opts := []zap.Option{zap.AddCaller()}
	if prod {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	l := zap.New(core, opts...)
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
