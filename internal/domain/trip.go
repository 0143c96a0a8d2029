// Package domain contains the core data types for the triplog application.
// This package has zero external dependencies and is imported by every other
// internal package (store, filter, summary, session, handler).
package domain

import "time"

// Travel modes recognised for per-mode route metrics.
// The driving values double as a trip's primary distance and duration.
const (
	ModeDriving   = "DRIVING"
	ModeBicycling = "BICYCLING"
	ModeWalking   = "WALKING"
)

// RouteInfo carries the computed metrics for one travel mode of a trip.
// A trip holds at most one RouteInfo per distinct travel mode.
type RouteInfo struct {
	TravelMode      string  `json:"travelMode"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
}

// Trip represents a single logged journey owned by one user.
// All fields have usable zero values so a partially populated backend
// document always decodes into a well-formed Trip.
type Trip struct {
	ID                  string      `json:"id"`
	UserID              string      `json:"userId"`
	Title               string      `json:"title"`
	StartLocation       string      `json:"startLocation"`
	DestinationLocation string      `json:"destinationLocation"`
	StartLatLng         string      `json:"startLatLng,omitempty"`       // "lat,lng", empty if unknown
	DestinationLatLng   string      `json:"destinationLatLng,omitempty"` // "lat,lng", empty if unknown
	Notes               string      `json:"notes,omitempty"`
	DistanceKm          float64     `json:"distanceKm"`      // primary (driving) distance
	DurationMinutes     int         `json:"durationMinutes"` // primary (driving) duration
	RouteInfo           []RouteInfo `json:"routeInfo,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
	PhotoURLs           []string    `json:"photoUrls,omitempty"`
	CreatedAt           int64       `json:"createdAt"` // epoch milliseconds, immutable once set
}

// TripInput is the payload for creating a trip. The session controller fills
// in the owning user and creation timestamp before the trip is persisted.
type TripInput struct {
	Title               string      `json:"title"`
	StartLocation       string      `json:"startLocation"`
	DestinationLocation string      `json:"destinationLocation"`
	StartLatLng         string      `json:"startLatLng,omitempty"`
	DestinationLatLng   string      `json:"destinationLatLng,omitempty"`
	Notes               string      `json:"notes,omitempty"`
	DistanceKm          float64     `json:"distanceKm"`
	DurationMinutes     int         `json:"durationMinutes"`
	RouteInfo           []RouteInfo `json:"routeInfo,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
	PhotoURLs           []string    `json:"photoUrls,omitempty"`
}

// NewTrip builds an unpersisted Trip from an input payload for the given
// user. CreatedAt defaults to now; the ID stays empty until the backend
// assigns one.
func NewTrip(userID string, in TripInput) Trip {
	return Trip{
		UserID:              userID,
		Title:               in.Title,
		StartLocation:       in.StartLocation,
		DestinationLocation: in.DestinationLocation,
		StartLatLng:         in.StartLatLng,
		DestinationLatLng:   in.DestinationLatLng,
		Notes:               in.Notes,
		DistanceKm:          in.DistanceKm,
		DurationMinutes:     in.DurationMinutes,
		RouteInfo:           in.RouteInfo,
		Tags:                in.Tags,
		PhotoURLs:           in.PhotoURLs,
		CreatedAt:           time.Now().UnixMilli(),
	}
}

// UpsertRouteInfo returns the route list with ri inserted, replacing any
// existing entry for the same travel mode. This is what maintains the
// one-entry-per-mode invariant.
func UpsertRouteInfo(routes []RouteInfo, ri RouteInfo) []RouteInfo {
	for i, existing := range routes {
		if existing.TravelMode == ri.TravelMode {
			out := make([]RouteInfo, len(routes))
			copy(out, routes)
			out[i] = ri
			return out
		}
	}
	out := make([]RouteInfo, 0, len(routes)+1)
	out = append(out, routes...)
	return append(out, ri)
}

// RouteForMode returns the route entry for the given travel mode, if any.
func RouteForMode(routes []RouteInfo, mode string) (RouteInfo, bool) {
	for _, ri := range routes {
		if ri.TravelMode == mode {
			return ri, true
		}
	}
	return RouteInfo{}, false
}
