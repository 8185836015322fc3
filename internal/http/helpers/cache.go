package helpers

import (
	"net/http"
	"strconv"
	"time"
)

// DefaultMaxAge es el max-age de las respuestas cacheables.
const DefaultMaxAge = 300 * time.Second

// now es reemplazable en tests.
var now = func() time.Time { return time.Now().UTC() }

// SetCacheHeaders escribe ETag, Last-Modified, Cache-Control y Expires.
func SetCacheHeaders(w http.ResponseWriter, etag string, lastModified time.Time, maxAge time.Duration) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	h := w.Header()
	if etag != "" {
		h.Set("ETag", etag)
	}
	if !lastModified.IsZero() {
		h.Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	}
	h.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	h.Set("Expires", now().Add(maxAge).Format(http.TimeFormat))
}

// NotModified reporta si el cliente ya tiene la versión vigente, por
// If-None-Match o, si no lo envió, por If-Modified-Since.
func NotModified(r *http.Request, etag string, lastModified time.Time) bool {
	if r.Header.Get("If-None-Match") != "" {
		return IfNoneMatchHit(r, etag)
	}
	ims := r.Header.Get("If-Modified-Since")
	if ims == "" || lastModified.IsZero() {
		return false
	}
	t, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	// http.TimeFormat tiene resolución de segundos
	return !lastModified.Truncate(time.Second).After(t)
}

// WriteCached escribe content con headers de cache y responde 304 sin body si
// el cliente ya lo tiene. lastModified cero omite Last-Modified.
func WriteCached(w http.ResponseWriter, r *http.Request, contentType string, content []byte, lastModified time.Time, maxAge time.Duration) {
	etag := ETag(content)
	SetCacheHeaders(w, etag, lastModified, maxAge)
	if NotModified(r, etag, lastModified) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(content)
	}
}
