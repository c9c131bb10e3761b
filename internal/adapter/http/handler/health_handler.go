package handler

import (
	"net/http"

	"github.com/iho/batchledger/internal/engine"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	engine *engine.Engine
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(eng *engine.Engine) *HealthHandler {
	return &HealthHandler{engine: eng}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 once the engine is accepting work.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Running() {
		writeError(w, http.StatusServiceUnavailable, "engine not running", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
