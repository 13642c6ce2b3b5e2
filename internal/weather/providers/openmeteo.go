package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com"

// openMeteoTimeLayout is the local ISO-8601 minute layout Open-Meteo uses
// for hourly times when timezone=auto is requested.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider is the free, keyless provider used when no OpenWeather
// key is configured.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	now     func() time.Time
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string { return p.name }

func (p *OpenMeteoProvider) Mode() weather.ProviderMode { return weather.ModeFallback }

type openMeteoPayload struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	CurrentWeather   *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *int     `json:"weathercode"`
	} `json:"current_weather"`
	Hourly *struct {
		Time             []string   `json:"time"`
		Temperature2m    []*float64 `json:"temperature_2m"`
		RelativeHumidity []*float64 `json:"relativehumidity_2m"`
		WindSpeed10m     []*float64 `json:"windspeed_10m"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, coords weather.Coordinates, displayName string) (weather.Report, error) {
	values := url.Values{}
	values.Set("latitude", formatDegrees(coords.Lat))
	values.Set("longitude", formatDegrees(coords.Lon))
	values.Set("current_weather", "true")
	values.Set("hourly", "temperature_2m,relativehumidity_2m,windspeed_10m")
	values.Set("timezone", "auto")

	var payload openMeteoPayload
	if err := getJSON(ctx, p.client, p.circuit, p.name, "forecast",
		p.baseURL+"/v1/forecast?"+values.Encode(), &payload); err != nil {
		return weather.Report{}, fmt.Errorf("open-meteo failed: %w", err)
	}

	name := displayName
	if name == "" {
		name = coords.CompactLabel()
	}

	current := weather.CurrentConditions{
		Name:           name,
		ConditionLabel: "N/A",
		WindSpeed:      weather.FloatPtr(0),
	}
	if cw := payload.CurrentWeather; cw != nil {
		current.TemperatureCelsius = weather.RoundedTemp(cw.Temperature)
		if cw.WeatherCode != nil {
			current.ConditionLabel = fmt.Sprintf("Wcode:%d", *cw.WeatherCode)
		}
		if cw.WindSpeed != nil && *cw.WindSpeed != 0 {
			current.WindSpeed = cw.WindSpeed
		}
	}
	if h := payload.Hourly; h != nil && len(h.RelativeHumidity) > 0 {
		if rh := h.RelativeHumidity[0]; rh != nil && *rh != 0 {
			current.HumidityPercent = rh
		}
	}

	now := p.now()
	return weather.Report{
		Current:  current,
		Forecast: p.window(payload, now),
		Provider: p.name,
		Fetched:  now,
	}, nil
}

func (p *OpenMeteoProvider) window(payload openMeteoPayload, now time.Time) weather.ForecastWindow {
	h := payload.Hourly
	if h == nil || len(h.Time) == 0 {
		return weather.UnavailableWindow()
	}

	loc := time.FixedZone("", payload.UTCOffsetSeconds)
	series := make([]weather.Sample, 0, len(h.Time))
	for i, raw := range h.Time {
		s := weather.Sample{
			RawTime: raw,
			Label:   humidityLabel(at(h.RelativeHumidity, i)),
		}
		if t, err := time.ParseInLocation(openMeteoTimeLayout, raw, loc); err == nil {
			s.TimestampMillis = t.UnixMilli()
		}
		s.Temperature = at(h.Temperature2m, i)
		series = append(series, s)
	}
	return weather.WindowFromSeries(series, now)
}

func humidityLabel(rh *float64) string {
	if rh == nil || *rh == 0 {
		return "--% RH"
	}
	return strconv.FormatFloat(*rh, 'f', -1, 64) + "% RH"
}

// at guards parallel hourly arrays of unequal length.
func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
