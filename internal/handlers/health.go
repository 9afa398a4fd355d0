package handlers

import (
	"net/http"
	"time"

	"github.com/menuboard/api/internal/platform/httpx"
)

var startTime = time.Now()

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	ready func() bool
}

// NewHealthHandlers constructs HealthHandlers. The ready callback reports
// whether the live caches are being fed; nil means always ready.
func NewHealthHandlers(ready func() bool) *HealthHandlers {
	return &HealthHandlers{ready: ready}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the service can answer from its caches.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_ready", "live caches not established", http.StatusServiceUnavailable))
		return
	}
	httpx.WriteJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ready"})
}
