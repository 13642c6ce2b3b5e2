package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherProvider is the primary (keyed) provider. It prefers the One
// Call endpoint and degrades to the current-weather plus 3-hourly forecast
// endpoints when One Call is not available to the key.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time

	oneCallCB  *gobreaker.CircuitBreaker
	currentCB  *gobreaker.CircuitBreaker
	forecastCB *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:       "openweathermap",
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     client,
		now:        time.Now,
		oneCallCB:  newBreaker("openweather-onecall"),
		currentCB:  newBreaker("openweather-current"),
		forecastCB: newBreaker("openweather-forecast"),
	}
}

func (p *OpenWeatherProvider) Name() string { return p.name }

func (p *OpenWeatherProvider) Mode() weather.ProviderMode { return weather.ModePrimary }

type owmOneCall struct {
	Current struct {
		Temp      *float64       `json:"temp"`
		Humidity  *float64       `json:"humidity"`
		WindSpeed *float64       `json:"wind_speed"`
		Weather   []owmCondition `json:"weather"`
	} `json:"current"`
	Hourly []struct {
		Dt      int64          `json:"dt"`
		Temp    *float64       `json:"temp"`
		Weather []owmCondition `json:"weather"`
	} `json:"hourly"`
}

type owmCurrent struct {
	Name string `json:"name"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []owmCondition `json:"weather"`
}

type owmForecast struct {
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, coords weather.Coordinates, displayName string) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, fmt.Errorf("openweather api key is not configured")
	}

	var oc owmOneCall
	err := getJSON(ctx, p.client, p.oneCallCB, p.name, "onecall",
		p.endpoint("/data/3.0/onecall", coords, url.Values{"exclude": {"minutely,alerts"}}), &oc)
	if err == nil {
		return p.fromOneCall(oc, coords, displayName), nil
	}
	if !errors.Is(err, ErrUpstreamStatus) && !errors.Is(err, ErrCircuitOpen) {
		return weather.Report{}, fmt.Errorf("openweather one call: %w", err)
	}
	slog.Warn("one call unavailable, using current weather endpoint", "provider", p.name, "err", err)

	var cur owmCurrent
	if err := getJSON(ctx, p.client, p.currentCB, p.name, "current",
		p.endpoint("/data/2.5/weather", coords, nil), &cur); err != nil {
		return weather.Report{}, fmt.Errorf("openweather current weather failed: %w", err)
	}

	name := displayName
	if name == "" {
		name = cur.Name
	}

	return weather.Report{
		Current: weather.CurrentConditions{
			Name:               name,
			TemperatureCelsius: weather.RoundedTemp(cur.Main.Temp),
			ConditionLabel:     firstLabel(cur.Weather),
			HumidityPercent:    cur.Main.Humidity,
			WindSpeed:          cur.Wind.Speed,
		},
		Forecast: p.fetchForecast(ctx, coords),
		Provider: p.name,
		Fetched:  p.now(),
	}, nil
}

func (p *OpenWeatherProvider) fromOneCall(oc owmOneCall, coords weather.Coordinates, displayName string) weather.Report {
	name := displayName
	if name == "" {
		name = coords.Label()
	}

	hourly := oc.Hourly
	if len(hourly) > weather.WindowSize {
		hourly = hourly[:weather.WindowSize]
	}
	samples := make([]weather.Sample, 0, len(hourly))
	for _, h := range hourly {
		ts := time.Unix(h.Dt, 0)
		samples = append(samples, weather.Sample{
			TimestampMillis: h.Dt * 1000,
			RawTime:         ts.UTC().Format(time.RFC3339),
			Temperature:     h.Temp,
			Label:           firstLabel(h.Weather),
		})
	}

	now := p.now()
	return weather.Report{
		Current: weather.CurrentConditions{
			Name:               name,
			TemperatureCelsius: weather.RoundedTemp(oc.Current.Temp),
			ConditionLabel:     firstLabel(oc.Current.Weather),
			HumidityPercent:    oc.Current.Humidity,
			WindSpeed:          oc.Current.WindSpeed,
		},
		Forecast: weather.NewWindow(weather.MapSamples(samples), now),
		Provider: p.name,
		Fetched:  now,
	}
}

// fetchForecast is the separate 3-hourly forecast request. Its failure is
// local: the window becomes unavailable while current conditions stand.
func (p *OpenWeatherProvider) fetchForecast(ctx context.Context, coords weather.Coordinates) weather.ForecastWindow {
	var fc owmForecast
	if err := getJSON(ctx, p.client, p.forecastCB, p.name, "forecast",
		p.endpoint("/data/2.5/forecast", coords, nil), &fc); err != nil {
		slog.Warn("openweather forecast failed", "provider", p.name, "err", err)
		return weather.UnavailableWindow()
	}

	samples := make([]weather.Sample, 0, len(fc.List))
	for _, item := range fc.List {
		samples = append(samples, weather.Sample{
			TimestampMillis: item.Dt * 1000,
			RawTime:         item.DtTxt,
			Temperature:     item.Main.Temp,
			Label:           firstLabel(item.Weather),
		})
	}
	return weather.WindowFromSamples(samples, p.now())
}

func (p *OpenWeatherProvider) endpoint(path string, coords weather.Coordinates, extra url.Values) string {
	values := url.Values{}
	values.Set("lat", formatDegrees(coords.Lat))
	values.Set("lon", formatDegrees(coords.Lon))
	values.Set("units", "metric")
	values.Set("appid", p.apiKey)
	for k, v := range extra {
		values[k] = v
	}
	return p.baseURL + path + "?" + values.Encode()
}

// TileURL returns the overlay tile template for a weather map layer.
func (p *OpenWeatherProvider) TileURL(layer string) string {
	return fmt.Sprintf("https://tile.openweathermap.org/map/%s/{z}/{x}/{y}.png?appid=%s", layer, p.apiKey)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
