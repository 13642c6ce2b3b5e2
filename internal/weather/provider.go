package weather

import (
	"context"
)

// Provider abstracts a weather data source (OpenWeatherMap or Open-Meteo).
type Provider interface {
	Name() string
	Mode() ProviderMode
	// Fetch returns current conditions and the next-24h forecast for coords.
	// displayName, when non-empty, becomes the current-conditions name.
	Fetch(ctx context.Context, coords Coordinates, displayName string) (Report, error)
}
