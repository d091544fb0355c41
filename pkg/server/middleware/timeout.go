package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Timeout enforces a per-request deadline. When the deadline passes before
// the handler finishes, the client receives a 504 and the handler's context
// is cancelled so it can abandon its work.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]any{
							"code":    "timeout",
							"message": "Request timeout: the request took too long to complete",
						},
					})
				}
			}
		})
	}
}
