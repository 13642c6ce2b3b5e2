package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/mapview"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/prefs"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, "weather-dashboard", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "err", err)
		os.Exit(1)
	}

	// Shared HTTP client for outbound provider and geocoder calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider path is fixed for the life of the process; overlays need the
	// OpenWeather key too.
	var (
		provider weather.Provider
		tiles    mapview.TileSource
	)
	switch cfg.Mode() {
	case weather.ModePrimary:
		owm := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
		provider, tiles = owm, owm
	default:
		provider = providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL)
	}
	service := weather.NewService(provider)
	slog.Info("weather provider selected", "mode", service.Mode(), "provider", service.ProviderName())

	var searcher geocode.Searcher
	switch cfg.Geocoder {
	case "google":
		searcher = geocode.NewGoogle(cfg.GoogleGeocoderAPIKey, cfg.GeocoderCountry)
	default:
		searcher = geocode.NewNominatim(httpClient, cfg.NominatimBaseURL, cfg.UserAgent, cfg.GeocoderCountryCodes)
	}

	prefStore, closePrefs := newPrefsStore(ctx, cfg)
	defer closePrefs()

	mapState := mapview.NewState(geocode.DefaultPlace, mapview.ZoomForWidth(cfg.ViewportWidth), tiles)
	session := dashboard.New(service, searcher, mapState, store.NewHistoryStore(cfg.HistoryMax), prefStore, dashboard.Options{
		SearchDebounce:    cfg.SearchDebounce,
		ResizeDebounce:    cfg.ResizeDebounce,
		HighlightDuration: cfg.HighlightDuration,
		ViewportWidth:     cfg.ViewportWidth,
		Location:          cfg.DisplayTimezone,
	})
	defer session.Close()

	// Initial load.
	session.SelectPlace(geocode.DefaultPlace.Name, geocode.DefaultPlace.Coords)

	sched := scheduler.New(session, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// API routes.
	httpapi.RegisterRoutes(app, session, service, searcher)

	go func() {
		slog.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("error flushing traces", "err", err)
	}
}

func setupLogging(cfg *config.AppConfig) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newPrefsStore returns the configured preference store and its close
// function. An unreachable Redis is not fatal: preferences fall back to
// process memory.
func newPrefsStore(ctx context.Context, cfg *config.AppConfig) (prefs.Store, func()) {
	noop := func() {}
	if cfg.PrefsBackend != "redis" {
		return prefs.NewMemoryStore(), noop
	}

	rs := prefs.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		slog.Warn("redis unavailable, keeping preferences in memory", "addr", cfg.RedisAddr, "err", err)
		_ = rs.Close()
		return prefs.NewMemoryStore(), noop
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			slog.Error("error closing redis", "err", err)
		}
	}
}
