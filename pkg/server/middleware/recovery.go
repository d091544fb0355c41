package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"aegis-hq/minerva/pkg/telemetry/logging"
)

// Recovery recovers from panics in handlers, logs the panic with its stack
// trace, and returns a 500 without exposing internal details to clients.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic in handler",
						"error", err,
						"request_id", logging.RequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]any{
							"code":    "internal",
							"message": "An internal error occurred. Please try again later.",
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
