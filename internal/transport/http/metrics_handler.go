package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"postpulse/internal/services"
)

// HubMetricsProvider exposes a point-in-time snapshot of WebSocket hub
// counters. *websocket.Hub satisfies it.
type HubMetricsProvider interface {
	GetHubMetrics() map[string]interface{}
}

// MetricsHandler serves JSON runtime metrics for the dashboard's status
// widgets. Prometheus scraping runs on the separate /metrics endpoint.
type MetricsHandler struct {
	health *services.HealthService
	hub    HubMetricsProvider
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(health *services.HealthService, hub HubMetricsProvider) *MetricsHandler {
	return &MetricsHandler{health: health, hub: hub}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetMetrics)
	r.Get("/websocket", h.GetWebSocketMetrics)
	return r
}

// GetMetrics returns a combined runtime snapshot
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.health.SystemStats(r.Context())
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]interface{}{"error": err.Error()})
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"metrics":   stats,
	}
	if h.hub != nil {
		response["websocket"] = h.hub.GetHubMetrics()
	}
	render.JSON(w, r, response)
}

// GetWebSocketMetrics returns hub counters only
func (h *MetricsHandler) GetWebSocketMetrics(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{"error": "websocket hub not running"})
		return
	}
	render.JSON(w, r, h.hub.GetHubMetrics())
}
