// Package rest serves the ops endpoints: liveness, readiness, health and
// Prometheus metrics.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const checkTimeout = 3 * time.Second

// Check is one named dependency check. Critical checks decide readiness;
// the others only show up in /health.
type Check struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	checks  []Check
	version string
	details map[string]string
}

// NewHealthHandler creates a HealthHandler. details are static facts
// reported by /health, such as loaded workflow versions.
func NewHealthHandler(version string, details map[string]string, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, version: version, details: details}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Details    map[string]string     `json:"details,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live always answers 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 503 when any critical check fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	components, ok := h.run(r.Context(), true)
	status, code := "ok", http.StatusOK
	if !ok {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, Components: components, Timestamp: time.Now()})
}

// Health runs every check. A failed non-critical check degrades the
// status but keeps 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components, ok := h.run(r.Context(), false)

	status, code := "ok", http.StatusOK
	switch {
	case !ok:
		status, code = "down", http.StatusServiceUnavailable
	default:
		for _, c := range components {
			if c.Status != "ok" {
				status = "degraded"
			}
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Details:    h.details,
		Timestamp:  time.Now(),
	})
}

// run executes the checks and reports whether all critical ones passed.
func (h *HealthHandler) run(ctx context.Context, criticalOnly bool) (map[string]CompStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	components := make(map[string]CompStatus, len(h.checks))
	ok := true
	for _, c := range h.checks {
		if criticalOnly && !c.Critical {
			continue
		}
		start := time.Now()
		err := c.Ping(ctx)
		if err != nil {
			components[c.Name] = CompStatus{Status: "down", Error: err.Error()}
			if c.Critical {
				ok = false
			}
			continue
		}
		components[c.Name] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}
	return components, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
