package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/efedauth/internal/clock"
)

func TestOpen_Memory(t *testing.T) {
	st, err := Open(context.Background(), Config{Driver: "memory"}, clock.System{})
	require.NoError(t, err)
	require.NotNil(t, st.Users)
	require.Nil(t, st.DB)
	require.NoError(t, st.Close())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"}, nil)
	require.ErrorContains(t, err, "unsupported driver")

	_, err = Open(context.Background(), Config{Driver: "postgres"}, nil)
	require.ErrorContains(t, err, "DSN")
}

func TestPoolConfig(t *testing.T) {
	var cfg Config
	cfg.Postgres.MaxOpenConns = 20
	cfg.Postgres.MaxIdleConns = 2
	cfg.Postgres.ConnMaxLifetime = "30m"

	pc := poolConfig(cfg)
	require.Equal(t, int32(20), pc.MaxConns)
	require.Equal(t, int32(2), pc.MinConns)
	require.Equal(t, 30*time.Minute, pc.ConnMaxLifetime)

	cfg.Postgres.ConnMaxLifetime = "nope"
	require.Zero(t, poolConfig(cfg).ConnMaxLifetime)
}
