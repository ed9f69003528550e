package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
)

const (
	httpTimeout       = 10 * time.Second
	geocodeDefaultURL = "https://maps.googleapis.com/maps/api/geocode/json"
)

// ErrNoResults is returned when the provider knows no place for the query.
var ErrNoResults = errors.New("geocoder returned no results")

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request and decodes the JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET geocode returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding geocode response: %w", err)
	}
	return nil
}

// Location is a geocoded point.
type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

// Geocoder resolves free-text addresses with the Google Geocoding API.
type Geocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeocoder constructs a Geocoder with the given API key.
func NewGeocoder(apiKey string) *Geocoder {
	return &Geocoder{apiKey: apiKey, baseURL: geocodeDefaultURL, client: newHTTPClient()}
}

// NewGeocoderWithURL constructs a Geocoder pointing at a custom base URL (for tests).
func NewGeocoderWithURL(baseURL, apiKey string) *Geocoder {
	return &Geocoder{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient()}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the best match for address.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	var raw geocodeResponse
	if err := doGet(ctx, g.client, g.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", address, err)
	}

	switch raw.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocoding %q: status %s %s", address, raw.Status, raw.ErrorMessage)
	}
	if len(raw.Results) == 0 {
		return nil, ErrNoResults
	}

	best := raw.Results[0]
	return &Location{
		Latitude:         best.Geometry.Location.Lat,
		Longitude:        best.Geometry.Location.Lng,
		FormattedAddress: best.FormattedAddress,
	}, nil
}
