package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"changemakers/pkg/types"
)

// Geocoder is optional. Callers must treat a nil Geocoder or a failed lookup
// as "no address available" and carry on.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	SearchPlaces(ctx context.Context, query string) ([]types.Place, error)
}

// NominatimClient talks to an OpenStreetMap Nominatim compatible endpoint.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewNominatimClient(baseURL, userAgent string, httpClient *http.Client) *NominatimClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &NominatimClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	v := url.Values{}
	v.Set("format", "jsonv2")
	v.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	var place nominatimPlace
	if err := c.get(ctx, "/reverse", v, &place); err != nil {
		return "", fmt.Errorf("failed to reverse geocode: %w", err)
	}

	return place.DisplayName, nil
}

func (c *NominatimClient) SearchPlaces(ctx context.Context, query string) ([]types.Place, error) {
	v := url.Values{}
	v.Set("format", "jsonv2")
	v.Set("q", query)
	v.Set("limit", "5")

	var results []nominatimPlace
	if err := c.get(ctx, "/search", v, &results); err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	places := make([]types.Place, 0, len(results))
	for _, r := range results {
		coord, ok := Parse(r.Lat + ", " + r.Lon)
		if !ok {
			continue
		}
		places = append(places, types.Place{Coordinate: *coord, AddressText: r.DisplayName})
	}

	return places, nil
}

func (c *NominatimClient) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
