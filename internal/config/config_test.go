package config

import (
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "OPENWEATHER_API_KEY", "GEOCODER", "PREFS_BACKEND", "HTTP_TIMEOUT", "DISPLAY_TIMEZONE", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Geocoder != "nominatim" || cfg.PrefsBackend != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SearchDebounce != 300*time.Millisecond || cfg.ResizeDebounce != 200*time.Millisecond {
		t.Fatalf("unexpected debounce defaults: %v %v", cfg.SearchDebounce, cfg.ResizeDebounce)
	}
	if cfg.HTTPTimeout != 0 || cfg.RefreshInterval != 0 {
		t.Fatalf("expected no timeout and no refresh by default")
	}
	if cfg.Mode() != weather.ModeFallback {
		t.Fatalf("expected fallback mode without a key, got %s", cfg.Mode())
	}
}

func TestLoadPrimaryMode(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", " abc123 ")
	t.Setenv("REFRESH_INTERVAL", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode() != weather.ModePrimary || cfg.OpenWeatherAPIKey != "abc123" {
		t.Fatalf("expected primary mode with trimmed key, got %+v", cfg)
	}
	if cfg.RefreshInterval != 10*time.Minute {
		t.Fatalf("unexpected refresh interval %v", cfg.RefreshInterval)
	}
}

func TestLoadPlaceholderKeySelectsFallback(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "YOUR_API_KEY_HERE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode() != weather.ModeFallback {
		t.Fatalf("expected fallback mode for template key, got %s", cfg.Mode())
	}
	if cfg.OpenWeatherAPIKey != "" {
		t.Fatalf("expected template key to be dropped, got %q", cfg.OpenWeatherAPIKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SEARCH_DEBOUNCE": "soon",
		"GEOCODER":        "bing",
		"PREFS_BACKEND":   "redis",
		"LOG_LEVEL":       "loud",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("REDIS_ADDR", "")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadGoogleRequiresKey(t *testing.T) {
	t.Setenv("GEOCODER", "google")
	t.Setenv("GOOGLE_GEOCODER_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without google key")
	}

	t.Setenv("GOOGLE_GEOCODER_API_KEY", "key")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
