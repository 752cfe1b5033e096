package api

import (
	"net/http"

	"github.com/gramjyoti/microgrid-core/internal/site"
)

// overviewResponse attaches the dashboard display level to each reading.
type overviewResponse struct {
	site.Overview
	Levels map[string]site.Level `json:"levels"`
}

// handleSiteOverview returns solar, battery, load and grid readings.
func (s *Server) handleSiteOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.site.Overview(r.Context())
	if err != nil {
		s.logger.Error("failed to read site overview", "error", err)
		writeInternalError(w, "failed to read site overview")
		return
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		Overview: ov,
		Levels: map[string]site.Level{
			"solar":   ov.Solar.Level(),
			"battery": ov.Battery.Level(),
			"load":    ov.Load.Level(),
			"grid":    ov.Grid.Level(),
		},
	})
}

// handleSiteEnergy returns the daily energy chart series.
func (s *Server) handleSiteEnergy(w http.ResponseWriter, r *http.Request) {
	samples, err := s.site.EnergySeries(r.Context())
	if err != nil {
		s.logger.Error("failed to read energy series", "error", err)
		writeInternalError(w, "failed to read energy series")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"samples": samples,
		"count":   len(samples),
	})
}
