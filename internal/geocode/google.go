package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Google resolves a query through the Google Geocoding API. It yields at
// most one candidate, named after the query itself.
type Google struct {
	country string
}

// NewGoogle configures the geocoder package key. The key is global to the
// library, so only one Google searcher should exist per process.
func NewGoogle(apiKey, country string) *Google {
	geocoder.ApiKey = apiKey
	return &Google{country: country}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, query string) (places []weather.Place, err error) {
	defer func() {
		observability.GeocoderRequests.WithLabelValues(g.Name(), observability.Outcome(err)).Inc()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if geocoder.ApiKey == "" {
		return nil, errors.New("google geocoder api key is not configured")
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: query, Country: g.country})
	if err != nil {
		return nil, fmt.Errorf("google geocoding: %w", err)
	}

	coords := weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}
	if !coords.Valid() {
		return nil, nil
	}
	return []weather.Place{{Name: query, Coords: coords}}, nil
}
