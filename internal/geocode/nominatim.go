package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	nominatimLimit          = 6
)

// Nominatim searches OpenStreetMap place names.
type Nominatim struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	HTTPClient   *http.Client
	circuit      *gobreaker.CircuitBreaker
}

// NewNominatim creates a client restricted to countryCodes (comma separated
// ISO 3166-1 alpha-2 codes, empty for worldwide).
func NewNominatim(client *http.Client, baseURL, userAgent, countryCodes string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	return &Nominatim{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		UserAgent:    userAgent,
		CountryCodes: countryCodes,
		HTTPClient:   client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "nominatim",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (n *Nominatim) Search(ctx context.Context, query string) (places []weather.Place, err error) {
	defer func() {
		observability.GeocoderRequests.WithLabelValues(n.Name(), observability.Outcome(err)).Inc()
	}()

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(nominatimLimit))
	params.Set("addressdetails", "1")
	if n.CountryCodes != "" {
		params.Set("countrycodes", n.CountryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en")
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}

	result, err := n.circuit.Execute(func() (interface{}, error) {
		resp, err := n.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("place search failed: %d %s", resp.StatusCode, resp.Status)
		}
		var raw []nominatimResult
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode place search: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.([]nominatimResult)
	places = make([]weather.Place, 0, len(raw))
	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		places = append(places, weather.Place{
			Name:   r.DisplayName,
			Coords: weather.Coordinates{Lat: lat, Lon: lon},
		})
	}
	return places, nil
}
