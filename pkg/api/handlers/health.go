// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/edgy/edgy/pkg/api/response"
	"github.com/edgy/edgy/pkg/engine"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// readyCheckTimeout bounds each dependency ping of the readiness probe.
const readyCheckTimeout = 2 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	engine *engine.Engine
	deps   map[string]Pinger
}

// NewHealthHandler creates a new health handler. deps are pinged by the
// readiness probe.
func NewHealthHandler(eng *engine.Engine, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		engine: eng,
		deps:   deps,
	}
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.engine.IsHealthy() {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.engine.IsReady() {
		response.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{"ready": false})
		return
	}

	failed := map[string]string{}
	for name, dep := range h.deps {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		err := dep.Ping(ctx)
		cancel()
		if err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		response.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"ready":  false,
			"errors": failed,
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"ready": true})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.engine.GetStatus())
}
