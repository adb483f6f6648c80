package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/roomhub/internal/api/apierr"
	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/services/coordinator"
)

// StatsSource reports live counts
type StatsSource interface {
	Stats(ctx context.Context) (coordinator.Stats, error)
}

// StatsHandler serves process-wide counters
type StatsHandler struct {
	source StatsSource
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.source.Stats(r.Context())
	if err != nil {
		apierr.Write(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Stats{
		Rooms:       stats.Rooms,
		Connections: stats.Connections,
	})
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

// Banner handles GET /
func Banner(w http.ResponseWriter, _ *http.Request) {
	response.Text(w, http.StatusOK, "roomhub signaling server is running")
}
