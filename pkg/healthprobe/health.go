package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker tracks process liveness and readiness. Liveness is served
// elsewhere as a bare "ok"; readiness flips once bootstrap completes.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the current readiness flag.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// Uptime returns the elapsed time since the process started.
func (h *HealthChecker) Uptime() time.Duration {
	return time.Since(h.startTime)
}

// ReadyResponse is the readiness check body.
type ReadyResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Message string `json:"message,omitempty"`
}

// Ready returns an HTTP handler for readiness checks. It answers 200 once
// bootstrap has finished and 503 before that.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if !h.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(ReadyResponse{
				Status:  "not_ready",
				Message: "application is starting",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ReadyResponse{
			Status: "ready",
			Uptime: h.Uptime().String(),
		})
	}
}
