// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// StatsHandler serves service statistics for monitoring.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
