package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache. Las entradas expiradas se
// purgan en background.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory crea un cliente de cache en memoria.
func NewMemory(prefix string) *memoryClient {
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (m *memoryClient) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		m.misses.Add(1)
		return nil, ErrNotFound
	}
	m.hits.Add(1)
	b, _ := v.([]byte)
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (m *memoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	b := make([]byte, len(value))
	copy(b, value)
	m.c.Set(prefixed(m.prefix, key), b, ttl)
	return nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}

func (m *memoryClient) Stats(context.Context) (Stats, error) {
	return Stats{
		Driver: "memory",
		Keys:   int64(m.c.ItemCount()),
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}, nil
}
