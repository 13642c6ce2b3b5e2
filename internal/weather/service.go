package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/i474232898/weather-dashboard/internal/observability"
)

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Service fronts the provider selected for this process.
type Service struct {
	provider Provider
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Mode reports which provider path the service uses.
func (s *Service) Mode() ProviderMode {
	return s.provider.Mode()
}

// ProviderName reports the configured provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// FetchWeather fetches current conditions and the forecast window for a
// single place. Overlapping calls are independent; callers that need
// last-request-wins semantics must sequence the results themselves.
func (s *Service) FetchWeather(ctx context.Context, coords Coordinates, displayName string) (Report, error) {
	if !coords.Valid() {
		return Report{}, fmt.Errorf("%w: %.4f,%.4f", ErrInvalidCoordinates, coords.Lat, coords.Lon)
	}

	fetchID := uuid.NewString()
	ctx, span := observability.Tracer().Start(ctx, "weather.fetch")
	span.SetAttributes(
		attribute.String("fetch.id", fetchID),
		attribute.String("provider", s.provider.Name()),
		attribute.Float64("lat", coords.Lat),
		attribute.Float64("lon", coords.Lon),
	)
	defer span.End()

	start := time.Now()
	slog.Debug("fetching weather", "fetch_id", fetchID, "provider", s.provider.Name(), "place", displayName)

	report, err := s.provider.Fetch(ctx, coords, displayName)
	observability.FetchDuration.WithLabelValues(s.provider.Name(), observability.Outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return Report{}, fmt.Errorf("fetch weather for %q: %w", displayName, err)
	}

	slog.Info("weather fetched",
		"fetch_id", fetchID,
		"provider", s.provider.Name(),
		"place", report.Current.Name,
		"forecast_entries", len(report.Forecast.Entries),
		"duration", time.Since(start),
	)
	return report, nil
}
