package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/journal"
)

type eventList struct {
	Events []control.Event `json:"events"`
	Count  int             `json:"count"`
}

// handleListEvents returns the most recent control events, newest first.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	events, err := s.journal.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list control events", "error", err)
		writeInternalError(w, "failed to list control events")
		return
	}
	writeJSON(w, http.StatusOK, eventList{Events: events, Count: len(events)})
}

// handleListLoadEvents returns the control history of one load.
func (s *Server) handleListLoadEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.ctrl.Device(id); err != nil {
		writeControlError(w, err)
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	events, err := s.journal.ListByDevice(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("failed to list control events", "device_id", id, "error", err)
		writeInternalError(w, "failed to list control events")
		return
	}
	writeJSON(w, http.StatusOK, eventList{Events: events, Count: len(events)})
}

// parseLimit reads ?limit=, writing a 400 response when it is malformed.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return journal.DefaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeBadRequest(w, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}
