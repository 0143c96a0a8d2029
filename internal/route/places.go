package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// Place is the resolved detail for a place: its display label and position.
type Place struct {
	Label    string `json:"label"`
	Position LatLng `json:"position"`
}

// PlacesClient resolves address autocomplete queries and place details
// through a Places-shaped HTTP API.
type PlacesClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewPlacesClient constructs a places client.
func NewPlacesClient(baseURL, apiKey string, httpClient *http.Client) *PlacesClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &PlacesClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Autocomplete returns label suggestions for a partial address query.
func (c *PlacesClient) Autocomplete(ctx context.Context, query string) ([]Suggestion, error) {
	q := url.Values{}
	q.Set("input", query)
	q.Set("key", c.apiKey)

	var body struct {
		Status      string `json:"status"`
		Predictions []struct {
			PlaceID     string `json:"place_id"`
			Description string `json:"description"`
		} `json:"predictions"`
	}
	if err := c.getJSON(ctx, "/place/autocomplete/json?"+q.Encode(), &body); err != nil {
		return nil, fmt.Errorf("route.PlacesClient.Autocomplete: %w", err)
	}
	if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("route.PlacesClient.Autocomplete: places error: %s", body.Status)
	}

	out := make([]Suggestion, 0, len(body.Predictions))
	for _, p := range body.Predictions {
		out = append(out, Suggestion{PlaceID: p.PlaceID, Description: p.Description})
	}
	return out, nil
}

// Details resolves a place ID to its display label and coordinate.
func (c *PlacesClient) Details(ctx context.Context, placeID string) (Place, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("key", c.apiKey)

	var body struct {
		Status string `json:"status"`
		Result struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location LatLng `json:"location"`
			} `json:"geometry"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, "/place/details/json?"+q.Encode(), &body); err != nil {
		return Place{}, fmt.Errorf("route.PlacesClient.Details: %w", err)
	}
	if body.Status != "OK" {
		return Place{}, fmt.Errorf("route.PlacesClient.Details: places error: %s", body.Status)
	}

	return Place{
		Label:    body.Result.FormattedAddress,
		Position: body.Result.Geometry.Location,
	}, nil
}

func (c *PlacesClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
