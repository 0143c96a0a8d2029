package handler

import (
	"encoding/json"
	"net/http"
)

// SignIn handles POST /session/signin. The body carries a provider-issued
// identity token; a successful verification rebinds the session and the
// trip stream follows via the auth watcher.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	id, err := s.authn.SignIn(body.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid_token", err))
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// SignOut handles POST /session/signout. Trip data is cleared from the
// session immediately; signing out twice is harmless.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	s.authn.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
