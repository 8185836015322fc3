package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/efedauth/internal/clock"
)

// MemoryLimiter es un MultiLimiter de proceso. Comparte el estado entre
// sesiones pero no entre instancias. Las keys inactivas expiran solas.
type MemoryLimiter struct {
	mu    sync.Mutex
	c     *gocache.Cache
	clock clock.Clock
}

func NewMemoryLimiter(c clock.Clock) *MemoryLimiter {
	return &MemoryLimiter{
		c:     gocache.New(10*time.Minute, 5*time.Minute),
		clock: clock.OrSystem(c),
	}
}

func (m *MemoryLimiter) AllowWithLimits(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b := Buckets{}
	if v, ok := m.c.Get(key); ok {
		b[key] = v.([]int64)
	}
	allowed := b.Check(key, limit, window, now)
	hits := int64(len(b[key]))
	if ts, ok := b[key]; ok {
		m.c.Set(key, ts, window)
	} else {
		m.c.Delete(key)
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   max(int64(limit)-hits, 0),
		CurrentHits: hits,
		WindowTTL:   window,
	}
	if !allowed {
		res.RetryAfter = b.RetryAfter(key, window, now)
	}
	return res, nil
}

func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	m.c.Delete(key)
	m.mu.Unlock()
	return nil
}
