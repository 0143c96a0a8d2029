package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkarlsen/triplog/internal/domain"
)

// errorResponse is the JSON body for every non-2xx answer.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON renders v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps controller and store errors onto HTTP statuses. The
// session controller already records failures in its published state; the
// status here just mirrors them for direct callers.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody("not_authenticated", err))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", err))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", err))
	default:
		writeJSON(w, http.StatusBadGateway, errorBody("backend_failure", err))
	}
}

// writeBadRequest rejects a request before it reaches the session layer
// (missing or malformed body, bad parameters).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{Code: "bad_request", Message: message}})
}

func errorBody(code string, err error) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: err.Error()}}
}
