package geocode

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultPlace is shown when the dashboard starts.
var DefaultPlace = weather.Place{Name: "Shimla", Coords: weather.Coordinates{Lat: 31.1048, Lon: 77.1734}}

// KnownCities backs instant suggestions and recent-selection lookups.
var KnownCities = []weather.Place{
	{Name: "Delhi", Coords: weather.Coordinates{Lat: 28.6139, Lon: 77.2090}},
	{Name: "Mumbai", Coords: weather.Coordinates{Lat: 19.0760, Lon: 72.8777}},
	{Name: "Kolkata", Coords: weather.Coordinates{Lat: 22.5726, Lon: 88.3639}},
	{Name: "Chennai", Coords: weather.Coordinates{Lat: 13.0827, Lon: 80.2707}},
	{Name: "Bengaluru", Coords: weather.Coordinates{Lat: 12.9716, Lon: 77.5946}},
	{Name: "Hyderabad", Coords: weather.Coordinates{Lat: 17.3850, Lon: 78.4867}},
	{Name: "Jaipur", Coords: weather.Coordinates{Lat: 26.9124, Lon: 75.7873}},
	{Name: "Lucknow", Coords: weather.Coordinates{Lat: 26.8467, Lon: 80.9462}},
	{Name: "Ahmedabad", Coords: weather.Coordinates{Lat: 23.0225, Lon: 72.5714}},
	{Name: "Pune", Coords: weather.Coordinates{Lat: 18.5204, Lon: 73.8567}},
	{Name: "Shimla", Coords: weather.Coordinates{Lat: 31.1048, Lon: 77.1734}},
}

// MatchPrefix returns up to limit known cities whose name starts with
// query, case-insensitively.
func MatchPrefix(query string, limit int) []weather.Place {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []weather.Place
	for _, c := range KnownCities {
		if len(out) >= limit {
			break
		}
		if strings.HasPrefix(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// LookupCity finds a known city by exact name.
func LookupCity(name string) (weather.Place, bool) {
	for _, c := range KnownCities {
		if c.Name == name {
			return c, true
		}
	}
	return weather.Place{}, false
}
