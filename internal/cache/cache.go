// Package cache es el key-value con TTL donde vive el estado de sesión.
// Backends: memory (go-cache, una sola instancia) y redis (varias réplicas).
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client es lo que session.Store necesita de un backend. Las keys pasan por
// el prefijo configurado.
type Client interface {
	// Get devuelve ErrNotFound si la key no existe o venció.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set con ttl 0 no vence.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete de una key inexistente no es error.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Stats(ctx context.Context) (Stats, error)
}

// Stats contiene estadísticas del cache.
type Stats struct {
	Driver string
	Keys   int64
	Hits   int64
	Misses int64
}

type Config struct {
	Driver   string // "memory" | "redis"
	Addr     string
	Password string
	DB       int
	Prefix   string
}

var ErrNotFound = errors.New("cache: key not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New abre el backend de cfg.Driver. Redis se verifica con un ping.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
