package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		trust   bool
		want    string
	}{
		{"remote only", nil, "198.51.100.4:5555", true, "198.51.100.4"},
		{"xff first public", map[string]string{"X-Forwarded-For": "10.0.0.1, 203.0.113.9, 198.51.100.2"}, "10.0.0.2:1", true, "203.0.113.9"},
		{"xff all private falls to real ip", map[string]string{"X-Forwarded-For": "192.168.1.2", "X-Real-IP": "203.0.113.5"}, "10.0.0.2:1", true, "203.0.113.5"},
		{"client-ip", map[string]string{"Client-IP": "2001:db8::1"}, "127.0.0.1:1", true, "2001:db8::1"},
		{"reserved ignored", map[string]string{"X-Forwarded-For": "127.0.0.1, 169.254.1.1, 0.1.2.3"}, "192.0.2.1:80", true, "192.0.2.1"},
		{"garbage ignored", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.0.2.1:80", true, "192.0.2.1"},
		{"untrusted headers", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "192.0.2.1:80", false, "192.0.2.1"},
		{"remote without port", nil, "192.0.2.7", true, "192.0.2.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tc.trust); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestETagAndIfMatch(t *testing.T) {
	e := ETag([]byte("hello"))
	require.Equal(t, e, ETag([]byte("hello")))
	require.NotEqual(t, e, ETag([]byte("hello!")))
	require.Len(t, e, 18)

	r := httptest.NewRequest(http.MethodPut, "/", nil)
	require.False(t, IfMatchOK(r, e))
	r.Header.Set("If-Match", e)
	require.True(t, IfMatchOK(r, e))
	r.Header.Set("If-Match", "*")
	require.True(t, IfMatchOK(r, e))
}

func TestWriteCached(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }

	body := []byte(`{"roles":["viewer","owner"]}`)
	lastMod := fixed.Add(-time.Hour)

	rec := httptest.NewRecorder()
	WriteCached(rec, httptest.NewRequest(http.MethodGet, "/", nil), "application/json", body, lastMod, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, string(body), rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	require.Equal(t, fixed.Add(5*time.Minute).Format(http.TimeFormat), rec.Header().Get("Expires"))
	require.Equal(t, lastMod.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))

	// If-None-Match coincide
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("If-None-Match", `W/`+etag)
	rec = httptest.NewRecorder()
	WriteCached(rec, r, "application/json", body, lastMod, 0)
	require.Equal(t, http.StatusNotModified, rec.Code)
	require.Zero(t, rec.Body.Len())

	// If-None-Match distinto gana sobre If-Modified-Since
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("If-None-Match", `"other"`)
	r.Header.Set("If-Modified-Since", fixed.Format(http.TimeFormat))
	rec = httptest.NewRecorder()
	WriteCached(rec, r, "application/json", body, lastMod, 0)
	require.Equal(t, http.StatusOK, rec.Code)

	// If-Modified-Since posterior al último cambio
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("If-Modified-Since", lastMod.Format(http.TimeFormat))
	rec = httptest.NewRecorder()
	WriteCached(rec, r, "application/json", body, lastMod, time.Minute)
	require.Equal(t, http.StatusNotModified, rec.Code)
	require.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("If-Modified-Since", lastMod.Add(-time.Second).Format(http.TimeFormat))
	rec = httptest.NewRecorder()
	WriteCached(rec, r, "application/json", body, lastMod, 0)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadJSON(t *testing.T) {
	var v struct{ Email string }

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","extra":1}`))
	r.Header.Set("Content-Type", "application/json")
	require.True(t, ReadJSON(httptest.NewRecorder(), r, &v))
	require.Equal(t, "a@b.co", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`email=a`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	require.False(t, ReadJSON(rec, r, &v))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	r.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	require.False(t, ReadJSON(rec, r, &v))
	require.Contains(t, rec.Body.String(), "INVALID_JSON")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", MaxBodyBytes)+`"}`))
	r.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	require.False(t, ReadJSON(rec, r, &v))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
