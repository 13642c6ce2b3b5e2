package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// OpenWeatherAPIKey selects the provider path: present means primary
	// (OpenWeather), absent means fallback (Open-Meteo).
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string `validate:"omitempty,url"`
	OpenMeteoBaseURL   string `validate:"omitempty,url"`

	// Place search.
	Geocoder             string `validate:"oneof=nominatim google"`
	NominatimBaseURL     string `validate:"omitempty,url"`
	GeocoderCountryCodes string
	GoogleGeocoderAPIKey string `validate:"required_if=Geocoder google"`
	GeocoderCountry      string
	UserAgent            string `validate:"required"`

	// HTTPTimeout bounds outbound requests (0 = no timeout).
	HTTPTimeout time.Duration `validate:"gte=0"`

	SearchDebounce    time.Duration `validate:"gt=0"`
	ResizeDebounce    time.Duration `validate:"gt=0"`
	HighlightDuration time.Duration `validate:"gt=0"`
	ViewportWidth     int           `validate:"gt=0"`

	// RefreshInterval re-fetches the selected place periodically (0 = off).
	RefreshInterval time.Duration `validate:"gte=0"`

	PrefsBackend  string `validate:"oneof=memory redis"`
	RedisAddr     string `validate:"required_if=PrefsBackend redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	DisplayTimezone *time.Location `validate:"required"`

	// max number of recent selections (0 = unlimited)
	HistoryMax int `validate:"gte=0"`

	LogLevel  slog.Level
	LogFormat string `validate:"oneof=text json"`

	OTLPEndpoint string `validate:"omitempty,url"`
}

// placeholderAPIKey is the value shipped in template .env files. It is
// treated as no key at all.
const placeholderAPIKey = "YOUR_API_KEY_HERE"

var validate = validator.New()

// Mode reports the provider path selected by the configured key.
func (c *AppConfig) Mode() weather.ProviderMode {
	if c.OpenWeatherAPIKey != "" {
		return weather.ModePrimary
	}
	return weather.ModeFallback
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.OpenWeatherAPIKey == placeholderAPIKey {
		cfg.OpenWeatherAPIKey = ""
	}
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.OpenMeteoBaseURL = os.Getenv("OPENMETEO_BASE_URL")

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", "nominatim"))
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.GeocoderCountryCodes = getenvDefault("GEOCODER_COUNTRY_CODES", "in")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.GeocoderCountry = getenvDefault("GEOCODER_COUNTRY", "India")
	cfg.UserAgent = getenvDefault("USER_AGENT", "weather-dashboard/1.0")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0"); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getenvDuration("SEARCH_DEBOUNCE", "300ms"); err != nil {
		return nil, err
	}
	if cfg.ResizeDebounce, err = getenvDuration("RESIZE_DEBOUNCE", "200ms"); err != nil {
		return nil, err
	}
	if cfg.HighlightDuration, err = getenvDuration("HIGHLIGHT_DURATION", "700ms"); err != nil {
		return nil, err
	}
	cfg.ViewportWidth = getenvInt("VIEWPORT_WIDTH", 980)
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}

	cfg.PrefsBackend = strings.ToLower(getenvDefault("PREFS_BACKEND", "memory"))
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	tz := getenvDefault("DISPLAY_TIMEZONE", "Local")
	if cfg.DisplayTimezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	cfg.HistoryMax = getenvInt("HISTORY_MAX", 0)

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "text"))
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
