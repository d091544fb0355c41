package handlers

import "net/http"

// Health handles GET /health. Liveness is unconditional: a responding
// process is alive.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.checker.CheckLiveness(r.Context()))
}

// Ready handles GET /ready. A degraded system answers 503 so load balancers
// stop routing to it, with per-component detail in the body.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckReadiness(r.Context())

	code := http.StatusOK
	if status.Status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
