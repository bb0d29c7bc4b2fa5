package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Service    string            `json:"service"`
	Checks     map[string]string `json:"checks"`
	Workspaces int               `json:"workspaces"`
}

// Health handles GET /health. A configured but unreachable Redis reports
// the service degraded with 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	log.Debug("Health check requested")

	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  h.now().UTC(),
		Version:    "1.0.0",
		Service:    "votedesk",
		Checks:     map[string]string{"redis": "disabled"},
		Workspaces: h.c.Workspaces.Len(),
	}
	status := http.StatusOK

	if h.c.HasRedis() {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.c.GetCacheService().HealthCheck(ctx); err != nil {
			log.WithError(err).Warn("Redis health check failed")
			response.Status = "degraded"
			response.Checks["redis"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	h.writeJSON(w, r, status, response)
}
