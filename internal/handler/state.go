package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkarlsen/triplog/internal/domain"
)

// GetState handles GET /state: the current session snapshot.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Snapshot())
}

// StreamState handles GET /state/stream: a server-sent-events feed carrying
// one `state` event per published snapshot. Observation is latest-value; a
// slow client skips intermediate snapshots rather than lagging behind.
func (s *Server) StreamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeBadRequest(w, "streaming not supported")
		return
	}

	ch, cancel := s.sessions.Watch()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-ch:
			payload, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// SetFilters handles PUT /filters: replace the criteria set and return the
// re-derived snapshot.
func (s *Server) SetFilters(w http.ResponseWriter, r *http.Request) {
	var criteria domain.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeBadRequest(w, "invalid filter criteria body")
		return
	}
	s.sessions.SetFilters(criteria)
	writeJSON(w, http.StatusOK, s.sessions.Snapshot())
}

// ClearFilters handles DELETE /filters.
func (s *Server) ClearFilters(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearFilters()
	writeJSON(w, http.StatusOK, s.sessions.Snapshot())
}

// DismissMessages handles POST /messages/dismiss: the single shared
// operation clearing both the error and success messages.
func (s *Server) DismissMessages(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearMessages()
	w.WriteHeader(http.StatusNoContent)
}
