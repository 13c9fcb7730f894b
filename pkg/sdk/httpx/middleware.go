// Package httpx is the net/http adapter: thin glue between a host's
// handler chain and the SDK core.
package httpx

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/tracker"
)

// Middleware returns HTTP middleware that records request metrics and
// captures handler panics as error events.
//
// Usage:
//
//	client, _ := sdk.Init(ctx, sdk.ClientConfig{...})
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", handler)
//	http.ListenAndServe(":8080", httpx.Middleware(client)(mux))
func Middleware(client *sdk.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap ResponseWriter to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				route := normalizePath(r.URL.Path)
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", rec)
					}
					client.CaptureError(err, captureContext(r, http.StatusInternalServerError, start))
					rw.statusCode = http.StatusInternalServerError
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
				client.RecordRequest(r.Method, route, rw.statusCode, time.Since(start))
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// captureContext snapshots the request for an error event. Header and
// body sanitization happens downstream in the tracker.
func captureContext(r *http.Request, status int, start time.Time) *tracker.Context {
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	query := make(map[string]string)
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}

	return &tracker.Context{
		Request: &tracker.Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Headers:   headers,
			Query:     query,
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
		},
		Response: &tracker.Response{
			StatusCode: status,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
		},
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var (
	numericIDRe = regexp.MustCompile(`/\d+`)
	uuidRe      = regexp.MustCompile(`/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

// normalizePath replaces ids in paths to avoid cardinality explosion.
// Examples:
//   - /api/users/123 → /api/users/{id}
//   - /api/users/abc-123-def-... (UUID) → /api/users/{id}
func normalizePath(path string) string {
	path = numericIDRe.ReplaceAllString(path, "/{id}")
	path = uuidRe.ReplaceAllString(path, "/{id}")
	return path
}
