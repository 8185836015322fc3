package rate

import (
	"context"
	"time"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter aplica un límite fijo por key (middleware global).
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// MultiLimiter permite elegir límite y ventana en cada llamada y compartir el
// estado entre sesiones e instancias (ej: login por IP).
type MultiLimiter interface {
	AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Fixed adapta un MultiLimiter a Limiter con límite y ventana fijos.
type Fixed struct {
	Multi  MultiLimiter
	Limit  int
	Window time.Duration
}

// NewFixed crea el adapter. Sin límite usa 60/min.
func NewFixed(m MultiLimiter, limit int, window time.Duration) *Fixed {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Fixed{Multi: m, Limit: limit, Window: window}
}

func (f *Fixed) Allow(ctx context.Context, key string) (Result, error) {
	return f.Multi.AllowWithLimits(ctx, key, f.Limit, f.Window)
}
