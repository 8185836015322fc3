package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/cache"
	"github.com/dropDatabas3/efedauth/internal/clock"
	authctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/health"
	svc "github.com/dropDatabas3/efedauth/internal/http/services/health"
	"github.com/dropDatabas3/efedauth/internal/metrics"
	"github.com/dropDatabas3/efedauth/internal/rate"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/security/password"
	"github.com/dropDatabas3/efedauth/internal/security/totp"
	"github.com/dropDatabas3/efedauth/internal/session"
	"github.com/dropDatabas3/efedauth/internal/store/memory"
)

const ownerPass = "correct-horse-battery"

type env struct {
	h   http.Handler
	clk *clock.Manual
}

func newEnv(t *testing.T, mut ...func(*Deps)) *env {
	t.Helper()
	clk := clock.NewManual(time.Unix(1_700_000_010, 0))

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	d, err := csrf.New([]byte(strings.Repeat("k", 32)), nil)
	require.NoError(t, err)

	mgr := auth.NewManager(auth.Deps{
		Users:   memory.NewUserStore(clk),
		Hasher:  &password.Hasher{Algorithm: password.Argon2id, Argon: password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}},
		TOTP:    totp.NewEngine(clk, nil),
		Clock:   clk,
		Metrics: m,
	})

	deps := Deps{
		Auth:      authctrl.NewControllers(mgr, d, clk.Now()),
		Health:    healthctrl.NewHealthController(svc.NewHealthService(svc.Deps{})),
		Sessions:  session.NewManager(session.NewStore(cache.NewMemory("")), clk, nil, session.DefaultOptions()),
		CSRF:      d,
		Metrics:   m,
		AllowSeed: true,
	}
	for _, f := range mut {
		f(&deps)
	}
	return &env{h: New(deps), clk: clk}
}

// client guarda la cookie de sesión y el último token CSRF como un browser.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
	csrf   string
}

func (e *env) client(t *testing.T) *client { return &client{t: t, h: e.h} }

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		r.AddCookie(c.cookie)
	}
	if c.csrf != "" {
		r.Header.Set("X-CSRF-Token", c.csrf)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, r)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name != "efed_session" {
			continue
		}
		if ck.MaxAge < 0 {
			c.cookie = nil
		} else {
			c.cookie = ck
		}
	}
	if tok := rec.Header().Get("X-CSRF-Token"); tok != "" {
		c.csrf = tok
	}

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	if tok, ok := out["csrf_token"].(string); ok && tok != "" {
		c.csrf = tok
	}
	return rec, out
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)

	rec, body := c.do(http.MethodGet, "/api/auth/csrf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body["csrf_token"])
	require.NotNil(t, c.cookie)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec, _ = c.do(http.MethodPost, "/api/auth/seed", map[string]string{"email": "owner@example.com", "password": ownerPass})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body = c.do(http.MethodPost, "/api/auth/seed", map[string]string{"email": "other@example.com", "password": ownerPass})
	require.Equal(t, http.StatusConflict, rec.Code)

	before := c.cookie.Value
	rec, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": " owner@example.com ", "password": ownerPass})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "authenticated", body["status"])
	require.NotEmpty(t, body["csrf_token"])
	require.NotEqual(t, before, c.cookie.Value, "el login rota la cookie")

	rec, body = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "owner", body["user"].(map[string]any)["role_name"])

	// crear usuario: sin token CSRF es 403
	tok := c.csrf
	c.csrf = ""
	rec, body = c.do(http.MethodPost, "/api/auth/users", map[string]any{"email": "ed@example.com", "password": ownerPass, "role": "editor"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	c.csrf = tok

	rec, body = c.do(http.MethodPost, "/api/auth/users", map[string]any{"email": "ed@example.com", "password": ownerPass, "role": "editor"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "editor", body["user"].(map[string]any)["role_name"])

	rec, _ = c.do(http.MethodPost, "/api/auth/users", map[string]any{"email": "x@example.com", "password": ownerPass, "role": "wizard"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// enrolar 2FA
	rec, body = c.do(http.MethodPost, "/api/auth/2fa/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	secret := body["secret"].(string)
	require.NotEmpty(t, secret)
	require.Contains(t, body["otpauth_url"], "otpauth://totp/")

	rec, _ = c.do(http.MethodPost, "/api/auth/2fa/enable", map[string]string{"code": "000000"})
	if totp.GenerateToken(secret, e.clk.Now()) != "000000" {
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec, body = c.do(http.MethodPost, "/api/auth/2fa/enable", map[string]string{"code": totp.GenerateToken(secret, e.clk.Now())})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "2fa_enabled", body["status"])

	rec, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, c.cookie)

	rec, body = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", body["code"])

	// segundo login: ahora pide 2FA
	c.csrf = ""
	c.do(http.MethodGet, "/api/auth/csrf", nil)
	rec, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "owner@example.com", "password": ownerPass})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2fa_required", body["status"])
	require.Nil(t, body["user"])

	rec, body = c.do(http.MethodPost, "/api/auth/2fa/verify", map[string]string{"code": totp.GenerateToken(secret, e.clk.Now())})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "authenticated", body["status"])
	require.Equal(t, true, body["user"].(map[string]any)["has_2fa"])

	rec, _ = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_RateLimitedPerSession(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	c.do(http.MethodGet, "/api/auth/csrf", nil)

	for i := 0; i < 5; i++ {
		rec, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "whatever-pass"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "INVALID_CREDENTIALS", body["code"])
	}
	rec, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "whatever-pass"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
}

func TestLogin_Validation(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	c.do(http.MethodGet, "/api/auth/csrf", nil)

	rec, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MISSING_FIELDS", body["code"])

	rec, _ = c.do(http.MethodPost, "/api/auth/2fa/verify", map[string]string{"code": "123456"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSeedDisabled(t *testing.T) {
	e := newEnv(t, func(d *Deps) { d.AllowSeed = false })
	c := e.client(t)
	c.do(http.MethodGet, "/api/auth/csrf", nil)

	rec, body := c.do(http.MethodPost, "/api/auth/seed", map[string]string{"email": "owner@example.com", "password": ownerPass})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ROUTE_NOT_FOUND", body["code"])
}

func TestGlobalRateLimit(t *testing.T) {
	e := newEnv(t, func(d *Deps) {
		d.RateLimiter = rate.NewFixed(rate.NewMemoryLimiter(nil), 2, time.Minute)
	})
	c := e.client(t)

	rec, _ := c.do(http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = c.do(http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = c.do(http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// infra fuera de /api no consume cuota
	rec, _ = c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRoles_Cacheable(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)

	rec, body := c.do(http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["roles"], 5)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Nil(t, c.cookie, "roles no abre sesión")

	r := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	r.Header.Set("If-None-Match", etag)
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, r)
	require.Equal(t, http.StatusNotModified, rr.Code)
}

func TestInfraRoutes(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)

	rec, body := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])

	rec, _ = c.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c.do(http.MethodGet, "/api/auth/csrf", nil)
	rec, _ = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/auth/csrf",status="200"}`)

	rec, body = c.do(http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotEmpty(t, body["request_id"])

	rec, _ = c.do(http.MethodGet, "/api/auth/login", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
