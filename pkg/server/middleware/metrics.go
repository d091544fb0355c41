package middleware

import (
	"net/http"
	"strconv"
	"time"

	"aegis-hq/minerva/pkg/telemetry/metrics"
)

// Metrics records request counts and latency per path. Paths are taken from
// the route pattern, not the raw URL, so cardinality stays bounded.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if pattern := r.Pattern; pattern != "" {
				path = pattern
			}
			m.RecordHTTPRequest(path, strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
