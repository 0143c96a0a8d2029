// Package handler implements the HTTP surface of the triplog daemon. The
// daemon hosts one user session (it is the device-local companion of the
// mobile UI); handlers translate requests into session controller calls and
// render the published state. All handlers are methods on Server, split
// into concern-specific files, sharing one dependency struct.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/triplog/internal/auth"
	"github.com/mkarlsen/triplog/internal/blob"
	"github.com/mkarlsen/triplog/internal/domain"
	"github.com/mkarlsen/triplog/internal/route"
	"github.com/mkarlsen/triplog/internal/session"
)

// SessionController defines the session operations the handlers depend on.
// Declaring the interface here (in the consumer package) lets handler tests
// inject a fake without a live store.
type SessionController interface {
	Snapshot() session.State
	Watch() (<-chan session.State, func())
	CreateTrip(ctx context.Context, in domain.TripInput) error
	UpdateTrip(ctx context.Context, tripID string, updates map[string]any, onDone func()) error
	DeleteTrip(ctx context.Context, tripID string, onDone func()) error
	RefreshSelectedTrip(ctx context.Context, tripID string) error
	ClearSelectedTrip()
	SetFilters(f domain.FilterCriteria)
	ClearFilters()
	ClearMessages()
}

// Authenticator is the slice of auth.Manager the handlers use.
type Authenticator interface {
	SignIn(token string) (auth.Identity, error)
	SignOut()
	Current() (auth.Identity, bool)
}

// RoutePlanner computes per-mode routes between two coordinates.
type RoutePlanner interface {
	Route(ctx context.Context, origin, dest route.LatLng, mode string) (route.Result, error)
	AllModes(ctx context.Context, origin, dest route.LatLng) (map[string]route.Result, error)
}

// PlaceFinder resolves address autocomplete and place details.
type PlaceFinder interface {
	Autocomplete(ctx context.Context, query string) ([]route.Suggestion, error)
	Details(ctx context.Context, placeID string) (route.Place, error)
}

// Server bundles the handler dependencies. Optional collaborators
// (photos, places, routes) may be nil; their endpoints then answer 503.
type Server struct {
	sessions SessionController
	authn    Authenticator
	photos   blob.Store
	routes   RoutePlanner
	places   PlaceFinder
}

// NewServer constructs the Server with all its dependencies.
func NewServer(sessions SessionController, authn Authenticator, photos blob.Store, routes RoutePlanner, places PlaceFinder) *Server {
	return &Server{
		sessions: sessions,
		authn:    authn,
		photos:   photos,
		routes:   routes,
		places:   places,
	}
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Post("/session/signin", s.SignIn)
	r.Post("/session/signout", s.SignOut)

	r.Get("/state", s.GetState)
	r.Get("/state/stream", s.StreamState)

	r.Post("/trips", s.CreateTrip)
	r.Get("/trips/{id}", s.GetTrip)
	r.Patch("/trips/{id}", s.UpdateTrip)
	r.Delete("/trips/{id}", s.DeleteTrip)

	r.Put("/filters", s.SetFilters)
	r.Delete("/filters", s.ClearFilters)
	r.Post("/messages/dismiss", s.DismissMessages)

	r.Post("/photos", s.UploadPhotos)
	r.Post("/routes", s.ComputeRoutes)
	r.Get("/places/autocomplete", s.PlacesAutocomplete)
	r.Get("/places/details", s.PlaceDetails)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
