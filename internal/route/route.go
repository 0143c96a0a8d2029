// Package route holds the mapping provider boundary: route computation
// between two coordinates per travel mode, place autocomplete and details
// lookup, and the geometry helpers they share. Providers are plain
// request/response HTTP collaborators; nothing here touches session state.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkarlsen/triplog/internal/domain"
)

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the "lat,lng" form used by the directions API and by the
// Trip entity's coordinate fields.
func (p LatLng) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lng)
}

// Result is one computed route: the metrics that become a trip's RouteInfo
// plus the decoded overview polyline for map display.
type Result struct {
	TravelMode      string
	DistanceKm      float64
	DurationMinutes int
	Polyline        []LatLng
}

// RouteInfo converts the result into the trip entity's per-mode entry.
func (r Result) RouteInfo() domain.RouteInfo {
	return domain.RouteInfo{
		TravelMode:      r.TravelMode,
		DistanceKm:      r.DistanceKm,
		DurationMinutes: r.DurationMinutes,
	}
}

// Cache is the optional read-through cache consulted before the provider is
// called. Misses return ("", false, nil); cache errors are treated as misses
// by the client so a cache outage never breaks route computation.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Client computes routes through a Google-Directions-shaped HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   Cache // nil disables caching
}

// NewClient constructs a directions client. Pass a nil cache to disable
// response caching.
func NewClient(baseURL, apiKey string, httpClient *http.Client, cache Cache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		cache:   cache,
	}
}

// directionsResponse mirrors the subset of the provider's JSON the client
// reads: top-level status, then the first leg of the first route.
type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route computes the route between origin and destination for one travel
// mode. Distance converts to kilometers and duration to whole minutes.
func (c *Client) Route(ctx context.Context, origin, dest LatLng, mode string) (Result, error) {
	key := fmt.Sprintf("route:%s:%s:%s", strings.ToLower(mode), origin, dest)
	if cached, ok := c.cacheGet(ctx, key); ok {
		var r Result
		if err := json.Unmarshal([]byte(cached), &r); err == nil {
			return r, nil
		}
	}

	q := url.Values{}
	q.Set("origin", origin.String())
	q.Set("destination", dest.String())
	q.Set("mode", strings.ToLower(mode))
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/directions/json?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("route.Client.Route: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("route.Client.Route: %w", err)
	}
	defer resp.Body.Close()

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("route.Client.Route: decode: %w", err)
	}

	if body.Status != "OK" {
		msg := body.ErrorMessage
		if msg == "" {
			msg = body.Status
		}
		return Result{}, fmt.Errorf("route.Client.Route: directions error: %s", msg)
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return Result{}, fmt.Errorf("route.Client.Route: no routes found")
	}

	leg := body.Routes[0].Legs[0]
	result := Result{
		TravelMode:      strings.ToUpper(mode),
		DistanceKm:      leg.Distance.Value / 1000.0,
		DurationMinutes: leg.Duration.Value / 60,
		Polyline:        DecodePolyline(body.Routes[0].OverviewPolyline.Points),
	}

	c.cacheSet(ctx, key, result)
	return result, nil
}

// AllModes computes routes for every supported travel mode, keyed by mode.
// Modes the provider cannot route are simply absent from the result; the
// call only fails when no mode routes at all, with the driving error as the
// representative reason.
func (c *Client) AllModes(ctx context.Context, origin, dest LatLng) (map[string]Result, error) {
	modes := []string{domain.ModeDriving, domain.ModeBicycling, domain.ModeWalking}

	out := make(map[string]Result, len(modes))
	var firstErr error
	for _, mode := range modes {
		r, err := c.Route(ctx, origin, dest, mode)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[mode] = r
	}
	if len(out) == 0 {
		return nil, firstErr
	}
	return out, nil
}

// Estimate is the offline fallback when the directions provider is
// unavailable: great-circle distance at an assumed average city speed.
func Estimate(origin, dest LatLng, mode string) Result {
	km := HaversineKm(origin, dest)
	return Result{
		TravelMode:      strings.ToUpper(mode),
		DistanceKm:      km,
		DurationMinutes: int(km / averageSpeedKmph * 60.0),
	}
}

func (c *Client) cacheGet(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	v, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return "", false
	}
	return v, true
}

func (c *Client) cacheSet(ctx context.Context, key string, r Result) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	// Cache failures are invisible to callers.
	_ = c.cache.Set(ctx, key, string(raw))
}
