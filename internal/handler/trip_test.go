package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/triplog/internal/auth"
	"github.com/mkarlsen/triplog/internal/blob"
	"github.com/mkarlsen/triplog/internal/domain"
	"github.com/mkarlsen/triplog/internal/route"
	"github.com/mkarlsen/triplog/internal/session"
)

func TestCreateTrip_Accepted(t *testing.T) {
	var got domain.TripInput
	sessions := &fakeSessions{
		createFn: func(_ context.Context, in domain.TripInput) error {
			got = in
			return nil
		},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodPost, srv.URL+"/trips",
		`{"title":"Paris Trip","distanceKm":465,"durationMinutes":280,"tags":["vacation"]}`)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode,
		"a create is acknowledged, the list arrives via the state stream")
	assert.Equal(t, "Paris Trip", got.Title)
	assert.Equal(t, []string{"vacation"}, got.Tags)
}

func TestCreateTrip_NotAuthenticated(t *testing.T) {
	sessions := &fakeSessions{
		createFn: func(context.Context, domain.TripInput) error {
			return fmt.Errorf("create: %w", domain.ErrNotAuthenticated)
		},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodPost, srv.URL+"/trips", `{"title":"x"}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTrip_BadBody(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/trips", `{broken`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTrip_ReturnsRefreshedSelection(t *testing.T) {
	trip := domain.Trip{ID: "t1", Title: "Paris Trip"}
	sessions := &fakeSessions{
		refreshFn: func(_ context.Context, tripID string) error {
			assert.Equal(t, "t1", tripID)
			return nil
		},
		state: session.State{SelectedTrip: &trip},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodGet, srv.URL+"/trips/t1", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[domain.Trip](t, resp)
	assert.Equal(t, "Paris Trip", got.Title)
}

func TestGetTrip_NotFound(t *testing.T) {
	// The session reports absence as state, not as an error; the handler
	// maps the missing selection to 404.
	sessions := &fakeSessions{}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodGet, srv.URL+"/trips/ghost", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTrip_Accepted(t *testing.T) {
	var gotID string
	var gotUpdates map[string]any
	sessions := &fakeSessions{
		updateFn: func(_ context.Context, tripID string, updates map[string]any, _ func()) error {
			gotID = tripID
			gotUpdates = updates
			return nil
		},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodPatch, srv.URL+"/trips/t1", `{"title":"Renamed"}`)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "t1", gotID)
	assert.Equal(t, map[string]any{"title": "Renamed"}, gotUpdates)
}

func TestUpdateTrip_EmptyBody(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	resp := doJSON(t, http.MethodPatch, srv.URL+"/trips/t1", `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTrip_UnknownField(t *testing.T) {
	sessions := &fakeSessions{
		updateFn: func(context.Context, string, map[string]any, func()) error {
			return fmt.Errorf("update: %w", domain.ErrValidation)
		},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodPatch, srv.URL+"/trips/t1", `{"nope":"x"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeleteTrip_NoContent(t *testing.T) {
	var gotID string
	sessions := &fakeSessions{
		deleteFn: func(_ context.Context, tripID string, _ func()) error {
			gotID = tripID
			return nil
		},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodDelete, srv.URL+"/trips/t1", "")

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "t1", gotID)
}

func TestDeleteTrip_NotFound(t *testing.T) {
	sessions := &fakeSessions{
		deleteFn: func(context.Context, string, func()) error {
			return fmt.Errorf("delete: %w", domain.ErrNotFound)
		},
	}
	srv := newTestServer(t, serverDeps{sessions: sessions})

	resp := doJSON(t, http.MethodDelete, srv.URL+"/trips/ghost", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- photos ----------------------------------------------------------------

// fakeBlobStore records uploads in memory.
type fakeBlobStore struct {
	uploadManyFn func(ctx context.Context, userID string, refs []blob.Ref) ([]string, error)
}

func (f *fakeBlobStore) Upload(context.Context, string, string, io.Reader) (string, error) {
	panic("fakeBlobStore: unexpected Upload call")
}

func (f *fakeBlobStore) UploadMany(ctx context.Context, userID string, refs []blob.Ref) ([]string, error) {
	return f.uploadManyFn(ctx, userID, refs)
}

func (f *fakeBlobStore) Delete(context.Context, string) error { return nil }

func multipartPhotos(t *testing.T, names ...string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("pixels"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadPhotos(t *testing.T) {
	photos := &fakeBlobStore{
		uploadManyFn: func(_ context.Context, userID string, refs []blob.Ref) ([]string, error) {
			assert.Equal(t, "user-1", userID)
			require.Len(t, refs, 2)
			return []string{"https://cdn/one.jpg", "https://cdn/two.jpg"}, nil
		},
	}
	authn := &fakeAuthn{current: &auth.Identity{UID: "user-1"}}
	srv := newTestServer(t, serverDeps{authn: authn, photos: photos})

	body, contentType := multipartPhotos(t, "one.jpg", "two.jpg")
	resp, err := http.Post(srv.URL+"/photos", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decodeBody[map[string][]string](t, resp)
	assert.Len(t, got["urls"], 2)
}

func TestUploadPhotos_RequiresSignIn(t *testing.T) {
	srv := newTestServer(t, serverDeps{photos: &fakeBlobStore{}})

	body, contentType := multipartPhotos(t, "one.jpg")
	resp, err := http.Post(srv.URL+"/photos", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadPhotos_Unconfigured(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	body, contentType := multipartPhotos(t, "one.jpg")
	resp, err := http.Post(srv.URL+"/photos", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// --- routes and places -----------------------------------------------------

type fakePlanner struct {
	routeFn    func(ctx context.Context, origin, dest route.LatLng, mode string) (route.Result, error)
	allModesFn func(ctx context.Context, origin, dest route.LatLng) (map[string]route.Result, error)
}

func (f *fakePlanner) Route(ctx context.Context, origin, dest route.LatLng, mode string) (route.Result, error) {
	return f.routeFn(ctx, origin, dest, mode)
}

func (f *fakePlanner) AllModes(ctx context.Context, origin, dest route.LatLng) (map[string]route.Result, error) {
	return f.allModesFn(ctx, origin, dest)
}

type fakePlaces struct {
	autocompleteFn func(ctx context.Context, query string) ([]route.Suggestion, error)
	detailsFn      func(ctx context.Context, placeID string) (route.Place, error)
}

func (f *fakePlaces) Autocomplete(ctx context.Context, query string) ([]route.Suggestion, error) {
	return f.autocompleteFn(ctx, query)
}

func (f *fakePlaces) Details(ctx context.Context, placeID string) (route.Place, error) {
	return f.detailsFn(ctx, placeID)
}

func TestComputeRoutes_AllModes(t *testing.T) {
	planner := &fakePlanner{
		allModesFn: func(_ context.Context, origin, dest route.LatLng) (map[string]route.Result, error) {
			assert.InDelta(t, 48.8566, origin.Lat, 1e-9)
			return map[string]route.Result{
				domain.ModeDriving: {TravelMode: "DRIVING", DistanceKm: 465, DurationMinutes: 280},
			}, nil
		},
	}
	srv := newTestServer(t, serverDeps{routes: planner})

	resp := doJSON(t, http.MethodPost, srv.URL+"/routes",
		`{"origin":{"lat":48.8566,"lng":2.3522},"destination":{"lat":45.764,"lng":4.8357}}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[map[string]route.Result](t, resp)
	assert.Contains(t, got, domain.ModeDriving)
}

func TestComputeRoutes_SingleMode(t *testing.T) {
	planner := &fakePlanner{
		routeFn: func(_ context.Context, _, _ route.LatLng, mode string) (route.Result, error) {
			assert.Equal(t, "WALKING", mode)
			return route.Result{TravelMode: "WALKING", DistanceKm: 3}, nil
		},
	}
	srv := newTestServer(t, serverDeps{routes: planner})

	resp := doJSON(t, http.MethodPost, srv.URL+"/routes",
		`{"origin":{"lat":1,"lng":2},"destination":{"lat":3,"lng":4},"mode":"WALKING"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[map[string]route.Result](t, resp)
	assert.Contains(t, got, "WALKING")
}

func TestComputeRoutes_Unconfigured(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/routes", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPlacesAutocomplete(t *testing.T) {
	places := &fakePlaces{
		autocompleteFn: func(_ context.Context, query string) ([]route.Suggestion, error) {
			assert.Equal(t, "eiffel", query)
			return []route.Suggestion{{PlaceID: "p1", Description: "Eiffel Tower"}}, nil
		},
	}
	srv := newTestServer(t, serverDeps{places: places})

	resp := doJSON(t, http.MethodGet, srv.URL+"/places/autocomplete?q=eiffel", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[[]route.Suggestion](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PlaceID)
}

func TestPlacesAutocomplete_MissingQuery(t *testing.T) {
	places := &fakePlaces{}
	srv := newTestServer(t, serverDeps{places: places})

	resp := doJSON(t, http.MethodGet, srv.URL+"/places/autocomplete", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceDetails(t *testing.T) {
	places := &fakePlaces{
		detailsFn: func(_ context.Context, placeID string) (route.Place, error) {
			assert.Equal(t, "p1", placeID)
			return route.Place{Label: "Champ de Mars", Position: route.LatLng{Lat: 48.8584, Lng: 2.2945}}, nil
		},
	}
	srv := newTestServer(t, serverDeps{places: places})

	resp := doJSON(t, http.MethodGet, srv.URL+"/places/details?place_id=p1", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[route.Place](t, resp)
	assert.Equal(t, "Champ de Mars", got.Label)
}
