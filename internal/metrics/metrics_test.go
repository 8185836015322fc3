package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuthCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Login("ok")
	m.Login("ok")
	m.Login("rate_limited")
	m.TwoFactor("verify", "invalid")
	m.RateLimited("session")

	if got := testutil.ToFloat64(m.loginTotal.WithLabelValues("ok")); got != 2 {
		t.Fatalf("login ok = %v", got)
	}
	if got := testutil.ToFloat64(m.twoFactorTotal.WithLabelValues("verify", "invalid")); got != 1 {
		t.Fatalf("2fa verify invalid = %v", got)
	}

	done := m.TrackInflight("get", "/api/auth/me")
	if got := testutil.ToFloat64(m.httpInflight.WithLabelValues("GET", "/api/auth/me")); got != 1 {
		t.Fatalf("inflight = %v", got)
	}
	done()
	m.ObserveRequest("get", "/api/auth/me", 0, 10*time.Millisecond)
	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/auth/me", "200")); got != 1 {
		t.Fatalf("requests = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `auth_login_total{outcome="rate_limited"} 1`) {
		t.Fatalf("exposition missing login counter:\n%s", rec.Body.String())
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	m.Login("ok")
	m.TwoFactor("setup", "ok")
	m.RateLimited("http")
	m.UserCreated("admin")
	m.SessionEnded("logout")
	m.ObserveRequest("GET", "/", 200, time.Second)
	m.TrackInflight("GET", "/")()
	if err := m.RegisterPool(nil, nil); err != nil {
		t.Fatalf("nil register pool: %v", err)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"/api/auth/login?x=1", "/api/auth/login"},
		{"/api/users/42", "/api/users/:param"},
		{"/s/abcdefABCDEF0123456789xyz", "/s/:param"},
	}
	for _, c := range cases {
		if got := NormalizePath(c.in); got != c.want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
