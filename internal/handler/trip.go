package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/triplog/internal/domain"
)

// CreateTrip handles POST /trips. The mutation is request/confirm: a 202
// acknowledges the accepted create, and the authoritative list arrives on
// the state stream once the backend re-pushes.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var input domain.TripInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid trip body")
		return
	}

	if err := s.sessions.CreateTrip(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetTrip handles GET /trips/{id}. The session resolves the trip from its
// held list when possible and falls back to a direct fetch; the refreshed
// selection is returned.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.sessions.RefreshSelectedTrip(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	snap := s.sessions.Snapshot()
	if snap.SelectedTrip == nil || snap.SelectedTrip.ID != id {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorDetail{Code: "not_found", Message: "trip not found"}})
		return
	}
	writeJSON(w, http.StatusOK, snap.SelectedTrip)
}

// UpdateTrip handles PATCH /trips/{id} with a partial field map body.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil || len(updates) == 0 {
		writeBadRequest(w, "a non-empty field map is required")
		return
	}

	if err := s.sessions.UpdateTrip(r.Context(), id, updates, nil); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.sessions.DeleteTrip(r.Context(), id, nil); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
