package middlewares

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/efedauth/internal/cache"
	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/rate"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/session"
)

var ok200 = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestChain_Order(t *testing.T) {
	var got []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = append(got, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(ok200, mk("a"), nil, mk("b"), mk("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 36)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, "abc-123", seen)
}

func TestWithSecurityHeaders(t *testing.T) {
	h := WithSecurityHeaders()(ok200)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	require.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	require.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestWithRecover(t *testing.T) {
	h := WithRecover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestWithRateLimit(t *testing.T) {
	lim := rate.NewFixed(rate.NewMemoryLimiter(clock.NewManual(time.Unix(1_700_000_000, 0))), 2, time.Minute)
	limited := 0
	h := Chain(ok200,
		WithClientIP(false),
		WithRateLimit(RateLimitConfig{Limiter: lim, Whitelist: []string{"/healthz"}, OnLimited: func() { limited++ }}),
	)

	do := func(path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.RemoteAddr = "198.51.100.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}
	require.Equal(t, http.StatusOK, do("/x").Code)
	require.Equal(t, http.StatusOK, do("/x").Code)
	rec := do("/x")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, 1, limited)
	require.Equal(t, http.StatusOK, do("/healthz").Code)
}

func TestWithCORS(t *testing.T) {
	h := WithCORS([]string{"https://admin.example.com/"})(ok200)

	r := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	r.Header.Set("Origin", "https://admin.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type sessionFixture struct {
	mgr     *session.Manager
	deriver *csrf.Deriver
	clk     *clock.Manual
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	d, err := csrf.New([]byte(strings.Repeat("k", 32)), nil)
	require.NoError(t, err)
	return &sessionFixture{
		mgr:     session.NewManager(session.NewStore(cache.NewMemory("")), clk, nil, session.DefaultOptions()),
		deriver: d,
		clk:     clk,
	}
}

// prime crea una sesión persistida con secreto CSRF y devuelve cookie y token.
func (f *sessionFixture) prime(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	ctx := context.Background()
	s, err := f.mgr.Start(ctx, "")
	require.NoError(t, err)
	tok, err := f.deriver.Token(s)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, f.mgr.Commit(ctx, rec, s))
	return rec.Result().Cookies()[0], tok
}

func TestWithSession_CommitsBeforeBody(t *testing.T) {
	f := newSessionFixture(t)
	h := WithSession(f.mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r.Context())
		s.State.UserID = 42
		s.State.LoginTime = 1
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	again, err := f.mgr.Start(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	require.Equal(t, int64(42), again.State.UserID)
}

func TestWithSession_CommitWithoutWrite(t *testing.T) {
	f := newSessionFixture(t)
	h := WithSession(f.mgr)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestWithCSRF(t *testing.T) {
	f := newSessionFixture(t)
	h := Chain(ok200, WithSession(f.mgr), WithCSRF(f.deriver))
	cookie, tok := f.prime(t)

	send := func(method, body, ct, header string) int {
		r := httptest.NewRequest(method, "/", strings.NewReader(body))
		r.AddCookie(cookie)
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		if header != "" {
			r.Header.Set(CSRFHeader, header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send(http.MethodGet, "", "", ""))
	require.Equal(t, http.StatusForbidden, send(http.MethodPost, "", "", ""))
	require.Equal(t, http.StatusForbidden, send(http.MethodPost, "", "", "nope"))
	require.Equal(t, http.StatusOK, send(http.MethodPost, "", "", tok))
	require.Equal(t, http.StatusOK, send(http.MethodPost, `{"csrf_token":"`+tok+`"}`, "application/json", ""))
	require.Equal(t, http.StatusOK, send(http.MethodPost, "csrf_token="+tok, "application/x-www-form-urlencoded", ""))
}

func TestWithCSRF_BodyStillReadable(t *testing.T) {
	f := newSessionFixture(t)
	cookie, tok := f.prime(t)

	var body string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := new(strings.Builder)
		_, _ = io.Copy(b, r.Body)
		body = b.String()
	}), WithSession(f.mgr), WithCSRF(f.deriver))

	payload := `{"csrf_token":"` + tok + `","email":"a@b.co"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	r.AddCookie(cookie)
	r.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.Equal(t, payload, body)
}

func TestWithCSRF_AcceptsTokenAcrossRotation(t *testing.T) {
	f := newSessionFixture(t)
	h := Chain(ok200, WithSession(f.mgr), WithCSRF(f.deriver))
	cookie, tok := f.prime(t)

	// pasado el intervalo de rotación el ID cambia al cargar la sesión
	f.clk.Advance(6 * time.Minute)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(cookie)
	r.Header.Set(CSRFHeader, tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	fresh := rec.Header().Get(CSRFHeader)
	require.NotEmpty(t, fresh)
	require.NotEqual(t, tok, fresh)
	newCookie := rec.Result().Cookies()[0]
	require.NotEqual(t, cookie.Value, newCookie.Value)
}
