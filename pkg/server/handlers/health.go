package handlers

import (
	"net/http"
	"time"

	"mercator-hq/warden/pkg/telemetry/health"
)

// HealthHandler handles liveness checks.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP always reports ok.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler handles readiness checks. The bridge is ready once a
// configuration is active. Failing component checks report "degraded"
// without failing readiness, since enforcement continues on the active
// configuration.
type ReadyHandler struct {
	Lifecycle Lifecycle
	Health    *health.Checker
}

// NewReadyHandler creates a new readiness check handler. checker may be nil.
func NewReadyHandler(l Lifecycle, checker *health.Checker) *ReadyHandler {
	return &ReadyHandler{Lifecycle: l, Health: checker}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	active := h.Lifecycle.Active()
	report := h.Health.Run(r.Context())

	status := "ready"
	code := http.StatusOK
	switch {
	case active == nil:
		status = "not_ready"
		code = http.StatusServiceUnavailable
	case !report.Healthy():
		status = "degraded"
	}

	resp := map[string]any{
		"status":    status,
		"state":     string(h.Lifecycle.State()),
		"timestamp": time.Now().Unix(),
	}
	if len(report.Checks) > 0 {
		resp["checks"] = report.Checks
	}
	if active != nil {
		resp["version"] = active.Version
		resp["origin"] = string(active.Origin)
	}
	if last := h.Lifecycle.LastResult(); last != nil {
		resp["last_refresh"] = map[string]any{
			"outcome":       string(last.Outcome),
			"started_at":    last.StartedAt.Unix(),
			"source_errors": len(last.SourceErrors),
		}
	}
	writeJSON(w, code, resp)
}
