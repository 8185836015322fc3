package rate

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/efedauth/internal/clock"
)

// slidingWindow: ZSET por key con score = unix ms de cada intento aceptado.
// Devuelve {allowed, hits, retryAfterMs}.
var slidingWindow = rdb.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= max then
  local retry = window
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then retry = tonumber(oldest[2]) + window - now end
  return {0, count, retry}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisLimiter es un MultiLimiter de ventana deslizante sobre Redis,
// compartido entre instancias.
type RedisLimiter struct {
	Client rdb.UniversalClient
	Prefix string
	clock  clock.Clock
	seq    atomic.Uint64
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, c clock.Clock) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, clock: clock.OrSystem(c)}
}

func (l *RedisLimiter) key(k string) string {
	return l.Prefix + strings.ReplaceAll(k, " ", "_")
}

func (l *RedisLimiter) AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if limit <= 0 {
		return Result{Allowed: false, RetryAfter: window, WindowTTL: window}, nil
	}
	now := l.clock.Now().UnixMilli()
	member := fmt.Sprintf("%d-%d", now, l.seq.Add(1))

	vals, err := slidingWindow.Run(ctx, l.Client, []string{l.key(key)},
		now, window.Milliseconds(), limit, member).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate: unexpected script reply %v", vals)
	}

	hits := vals[1]
	res := Result{
		Allowed:     vals[0] == 1,
		CurrentHits: hits,
		Remaining:   max(int64(limit)-hits, 0),
		WindowTTL:   window,
	}
	if !res.Allowed {
		res.RetryAfter = time.Duration(vals[2]) * time.Millisecond
	}
	return res, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.Client.Del(ctx, l.key(key)).Err()
}
