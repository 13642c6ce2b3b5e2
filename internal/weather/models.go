package weather

import (
	"fmt"
	"time"
)

// ProviderMode selects which provider code path serves weather requests.
// It is fixed at startup from configuration.
type ProviderMode string

const (
	ModePrimary  ProviderMode = "primary"
	ModeFallback ProviderMode = "fallback"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Valid reports whether both components are within their degree ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Label renders the coordinates the way the dashboard shows an unnamed place.
func (c Coordinates) Label() string {
	return fmt.Sprintf("%.2f, %.2f", c.Lat, c.Lon)
}

// CompactLabel is Label without the space, as Open-Meteo places are named.
func (c Coordinates) CompactLabel() string {
	return fmt.Sprintf("%.2f,%.2f", c.Lat, c.Lon)
}

// Place is a named location picked by the user.
type Place struct {
	Name   string      `json:"name"`
	Coords Coordinates `json:"coords"`
}

// CurrentConditions is the normalized current-weather record.
// Nil pointers mean the provider did not report the value.
type CurrentConditions struct {
	Name               string   `json:"name"`
	TemperatureCelsius *int     `json:"temperatureCelsius,omitempty"`
	ConditionLabel     string   `json:"conditionLabel"`
	HumidityPercent    *float64 `json:"humidityPercent,omitempty"`
	// WindSpeed keeps the provider's own unit: m/s from OpenWeather,
	// km/h from Open-Meteo.
	WindSpeed *float64 `json:"windSpeed,omitempty"`
}

// ForecastEntry is one normalized forecast sample.
type ForecastEntry struct {
	TimestampMillis int64 `json:"timestampMillis"`
	// RawTime is the provider's own time text (dt_txt, ISO local time).
	// The renderer falls back to it when TimestampMillis is zero.
	RawTime            string `json:"time,omitempty"`
	TemperatureCelsius *int   `json:"temperatureCelsius,omitempty"`
	ConditionLabel     string `json:"conditionLabel"`
}

// Time returns the entry timestamp as a time.Time.
func (e ForecastEntry) Time() time.Time {
	return time.UnixMilli(e.TimestampMillis)
}

// ForecastWindow is the ordered set of samples covering the next 24 hours.
// Entries are non-decreasing by TimestampMillis.
type ForecastWindow struct {
	Entries []ForecastEntry `json:"entries"`
	// NearestIndex is the first entry not earlier than the moment the
	// window was built, or 0 when none qualifies.
	NearestIndex int  `json:"nearestIndex"`
	Unavailable  bool `json:"unavailable,omitempty"`
}

// Report is the result of a single weather fetch.
type Report struct {
	Current  CurrentConditions `json:"current"`
	Forecast ForecastWindow    `json:"forecast"`
	Provider string            `json:"provider"`
	Fetched  time.Time         `json:"fetchedAt"`
}

// IntPtr and FloatPtr build optional fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
