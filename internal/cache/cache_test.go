package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func exerciseClient(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Set(ctx, "k", []byte("v2"), 0))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Ping(ctx))
}

func TestMemoryClient(t *testing.T) {
	c := NewMemory("sess")
	exerciseClient(t, c)

	// el valor guardado no comparte memoria con el del caller
	buf := []byte("abc")
	require.NoError(t, c.Set(context.Background(), "x", buf, time.Minute))
	buf[0] = 'z'
	got, _ := c.Get(context.Background(), "x")
	require.Equal(t, "abc", string(got))

	st, err := c.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, "memory", st.Driver)
	require.Equal(t, int64(1), st.Keys)
}

func TestRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), Config{Addr: mr.Addr(), Prefix: "efed"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	exerciseClient(t, c)

	require.NoError(t, c.Set(context.Background(), "ttl", []byte("x"), time.Second))
	require.True(t, mr.Exists("efed:ttl"))
	mr.FastForward(2 * time.Second)
	_, err = c.Get(context.Background(), "ttl")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = New(context.Background(), Config{Driver: "memcached"})
	require.Error(t, err)

	shared := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
	rc := NewRedisFromClient(shared, "")
	require.NoError(t, rc.Close())
	require.NoError(t, shared.Ping(context.Background()).Err(), "shared client stays open")
}
