package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
)

// HealthHandler returns uptime and whether the store answers.
type HealthHandler struct {
	startedAt time.Time
	deps      *Deps
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, deps *Deps) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, deps: deps}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if _, err := h.deps.Store.GetMessSettings(ctx); err != nil {
		h.deps.logger().Warn("health: store unavailable", "error", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}
	respond.JSON(w, code, status, map[string]string{
		"status": status,
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
