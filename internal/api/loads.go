package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/i18n"
)

// loadList is the response body for GET /loads.
type loadList struct {
	Loads     []device.Device   `json:"loads"`
	Count     int               `json:"count"`
	Aggregate device.Aggregate  `json:"aggregate"`
	Language  i18n.Language     `json:"language,omitempty"`
	Names     map[string]string `json:"names,omitempty"`
}

// loadResponse is a single device plus whether a toggle is in flight.
type loadResponse struct {
	device.Device
	Pending bool `json:"pending"`
}

// aggregateResponse adds the dashboard's one-decimal power string.
type aggregateResponse struct {
	device.Aggregate
	TotalActivePowerDisplay string `json:"total_active_power_display"`
}

// ToggleRequest is the JSON body for POST /loads/{id}/toggle.
type ToggleRequest struct {
	Status device.Status `json:"status"`
}

// ModeRequest is the JSON body for PUT /loads/{id}/mode.
type ModeRequest struct {
	Mode device.Mode `json:"mode"`
}

// EmergencyShutdownResponse reports how many loads were switched off or
// handed back to manual control.
type EmergencyShutdownResponse struct {
	Changed   int              `json:"changed"`
	Aggregate device.Aggregate `json:"aggregate"`
}

// handleListLoads returns every load in dashboard order. With ?lang= the
// response also carries localized load names keyed by device ID.
func (s *Server) handleListLoads(w http.ResponseWriter, r *http.Request) {
	loads := s.ctrl.Snapshot()
	resp := loadList{
		Loads:     loads,
		Count:     len(loads),
		Aggregate: device.ComputeAggregate(loads),
	}

	if raw := r.URL.Query().Get("lang"); raw != "" {
		lang, err := i18n.ParseLanguage(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		t := i18n.Lookup(lang)
		resp.Language = lang
		resp.Names = make(map[string]string, len(loads))
		for _, d := range loads {
			resp.Names[d.ID] = t(d.NameKey)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAggregate(w http.ResponseWriter, _ *http.Request) {
	agg := s.ctrl.Aggregate()
	writeJSON(w, http.StatusOK, aggregateResponse{Aggregate: agg, TotalActivePowerDisplay: agg.FormatPowerKW()})
}

func (s *Server) handleGetLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := s.ctrl.Device(id)
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{Device: d, Pending: s.ctrl.Pending(id)})
}

// handleToggleLoad switches a manual load on or off. The response is
// written once the control latency has passed.
func (s *Server) handleToggleLoad(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ctx := control.WithSource(r.Context(), control.SourceAPI)
	d, err := s.ctrl.Toggle(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{Device: d})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ctx := control.WithSource(r.Context(), control.SourceAPI)
	id := chi.URLParam(r, "id")
	d, err := s.ctrl.SetMode(ctx, id, req.Mode)
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{Device: d, Pending: s.ctrl.Pending(id)})
}

func (s *Server) handleFlipMode(w http.ResponseWriter, r *http.Request) {
	ctx := control.WithSource(r.Context(), control.SourceAPI)
	id := chi.URLParam(r, "id")
	d, err := s.ctrl.FlipMode(ctx, id)
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{Device: d, Pending: s.ctrl.Pending(id)})
}

// handleEmergencyShutdown forces every load off and manual. It cannot fail.
func (s *Server) handleEmergencyShutdown(w http.ResponseWriter, r *http.Request) {
	ctx := control.WithSource(r.Context(), control.SourceAPI)
	changed := s.ctrl.EmergencyShutdown(ctx)
	s.logger.Warn("emergency shutdown requested", "changed", changed, "request_id", requestIDFrom(r.Context()))
	writeJSON(w, http.StatusOK, EmergencyShutdownResponse{Changed: changed, Aggregate: s.ctrl.Aggregate()})
}
