// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/pulse/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth handles GET /healthz requests by serving the custom
// Prometheus registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
