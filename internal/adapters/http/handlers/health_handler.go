package handlers

import (
	"net/http"

	"github.com/phaseline/phaseline/internal/ports"
)

const (
	statusOK       = "ok"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	registry ports.HealthRegistry
}

func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness handles GET /health/live. It answers 200 whenever the process
// is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusOK})
}

// Readiness handles GET /health/ready. It runs every registered dependency
// check and answers 503 with per-check detail if any of them fail.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	results := h.registry.CheckAll(r.Context())

	healthy := true
	checks := make(map[string]string, len(results))
	for name, err := range results {
		if err != nil {
			healthy = false
			checks[name] = err.Error()
			continue
		}
		checks[name] = statusOK
	}

	code := http.StatusOK
	status := statusReady
	if !healthy {
		code = http.StatusServiceUnavailable
		status = statusNotReady
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
