package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/config"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNew_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Security.PasswordHash = "bcrypt"

	c, err := New(context.Background(), cfg, Options{Clock: clock.NewManual(time.Unix(1_700_000_010, 0))})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.Nil(t, c.Stores.DB)
	require.Nil(t, c.Shared)
	require.NotNil(t, c.Metrics)

	require.Equal(t, http.StatusOK, get(t, c.Handler, "/healthz").Code)

	rec := get(t, c.Handler, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ready", body["status"])

	// sin seed por HTTP por defecto
	rec = get(t, c.Handler, "/api/auth/csrf")
	require.Equal(t, http.StatusOK, rec.Code)
	r := httptest.NewRequest(http.MethodPost, "/api/auth/seed", bytes.NewBufferString(`{}`))
	for _, ck := range rec.Result().Cookies() {
		r.AddCookie(ck)
	}
	var tok map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	r.Header.Set("X-CSRF-Token", tok["csrf_token"])
	rec = httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// el owner se crea desde el core (bootstrap / CLI)
	u, err := c.Auth.SeedOwner(context.Background(), "owner@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.Equal(t, "owner", u.RoleName)
}

func TestNew_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Session.Store = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Rate.Backend = "redis"
	cfg.Rate.Enabled = true
	cfg.Rate.MaxRequests = 1
	cfg.Rate.Login.Shared = true

	c, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NotNil(t, c.Shared)

	rec := get(t, c.Handler, "/api/auth/csrf")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, mr.Keys(), "la sesión vive en redis")

	require.Equal(t, http.StatusTooManyRequests, get(t, c.Handler, "/api/roles").Code)

	rec = get(t, c.Handler, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"rate_limiter":{"status":"ok"`)
}

func TestNew_BadStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "mysql"
	_, err := New(context.Background(), cfg, Options{})
	require.Error(t, err)
}
