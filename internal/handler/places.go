package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mkarlsen/triplog/internal/route"
)

// ComputeRoutes handles POST /routes: route metrics between two coordinates
// for every travel mode (or one, when "mode" is given). The driving entry
// carries a trip's primary distance and duration.
func (s *Server) ComputeRoutes(w http.ResponseWriter, r *http.Request) {
	if s.routes == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errorDetail{Code: "unavailable", Message: "route planning is not configured"}})
		return
	}

	var body struct {
		Origin      route.LatLng `json:"origin"`
		Destination route.LatLng `json:"destination"`
		Mode        string       `json:"mode,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid route request body")
		return
	}

	if body.Mode != "" {
		result, err := s.routes.Route(r.Context(), body.Origin, body.Destination, body.Mode)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]route.Result{result.TravelMode: result})
		return
	}

	results, err := s.routes.AllModes(r.Context(), body.Origin, body.Destination)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// PlacesAutocomplete handles GET /places/autocomplete?q=...
func (s *Server) PlacesAutocomplete(w http.ResponseWriter, r *http.Request) {
	if s.places == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errorDetail{Code: "unavailable", Message: "places lookup is not configured"}})
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeBadRequest(w, "query parameter q is required")
		return
	}

	suggestions, err := s.places.Autocomplete(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// PlaceDetails handles GET /places/details?place_id=...
// The resolved label and coordinate feed a trip's location fields in the
// "lat,lng" form used by domain.Trip.
func (s *Server) PlaceDetails(w http.ResponseWriter, r *http.Request) {
	if s.places == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errorDetail{Code: "unavailable", Message: "places lookup is not configured"}})
		return
	}
	placeID := r.URL.Query().Get("place_id")
	if placeID == "" {
		writeBadRequest(w, "query parameter place_id is required")
		return
	}

	place, err := s.places.Details(r.Context(), placeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

// Compile-time proof that the concrete route clients satisfy the handler
// contracts.
var (
	_ RoutePlanner = (*route.Client)(nil)
	_ PlaceFinder  = (*route.PlacesClient)(nil)
)
