package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MetricsRecorder defines the interface for recording HTTP metrics.
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	IncActiveConnections()
	DecActiveConnections()
}

// contextMetricsRecorder is implemented by recorders that attach trace
// exemplars from the request context.
type contextMetricsRecorder interface {
	RecordHTTPRequestContext(ctx context.Context, method, path, status string, duration time.Duration)
}

// Metrics returns a middleware that records HTTP metrics.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	record := func(r *http.Request, status int, duration time.Duration) {
		path := routePattern(r)
		if path == r.URL.Path {
			path = normalizePath(path)
		}
		code := strconv.Itoa(status)
		if cr, ok := recorder.(contextMetricsRecorder); ok {
			cr.RecordHTTPRequestContext(r.Context(), r.Method, path, code, duration)
			return
		}
		recorder.RecordHTTPRequest(r.Method, path, code, duration)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/metrics") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder.IncActiveConnections()
			defer recorder.DecActiveConnections()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			defer func() {
				if err := recover(); err != nil {
					record(r, http.StatusInternalServerError, time.Since(start))
					panic(err)
				}
			}()

			next.ServeHTTP(wrapped, r)
			record(r, wrapped.statusCode, time.Since(start))
		})
	}
}

// normalizePath replaces UUIDs and numeric path segments with ":id" for
// requests that did not match a route.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			parts[i] = ":id"
			continue
		}
		if _, err := strconv.Atoi(part); err == nil && len(part) > 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
