package render

import (
	"math"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestTemperatureToColor(t *testing.T) {
	cases := []struct {
		temp *float64
		want string
	}{
		{weather.FloatPtr(-5), ColorFreezing},
		{weather.FloatPtr(0), ColorFreezing},
		{weather.FloatPtr(0.1), ColorCold},
		{weather.FloatPtr(10), ColorCold},
		{weather.FloatPtr(20), ColorMild},
		{weather.FloatPtr(30), ColorWarm},
		{weather.FloatPtr(30.5), ColorHot},
		{nil, "#default"},
		{weather.FloatPtr(math.NaN()), "#default"},
	}
	for _, tc := range cases {
		if got := TemperatureToColor(tc.temp, "#default"); got != tc.want {
			t.Errorf("TemperatureToColor(%v) = %s, want %s", tc.temp, got, tc.want)
		}
	}
}

func TestDetectTheme(t *testing.T) {
	morning := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC)

	if DetectTheme("", morning) != ThemeDay {
		t.Error("expected day at 07:00")
	}
	if DetectTheme("", evening) != ThemeNight {
		t.Error("expected night at 19:00")
	}
	if DetectTheme("night", morning) != ThemeNight {
		t.Error("expected stored theme to win")
	}
	if DetectTheme("sepia", morning) != ThemeDay {
		t.Error("expected unknown stored value to be ignored")
	}
}

func TestRenderPlaceholders(t *testing.T) {
	p := Render(State{Theme: ThemeNight, Loading: true})

	if p.LocationName != Placeholder || p.Temperature != "--°C" || p.Humidity != "Humidity: --%" || p.Wind != "Wind: -- km/h" {
		t.Fatalf("unexpected placeholders: %+v", p)
	}
	if p.TemperatureColor != DefaultTempColor(ThemeNight) {
		t.Fatalf("expected theme default color, got %s", p.TemperatureColor)
	}
	if !p.Loading || len(p.Forecast) != 0 {
		t.Fatalf("unexpected state: %+v", p)
	}
}

func TestRenderReport(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
	entries := []weather.ForecastEntry{
		{TimestampMillis: now.Add(-30 * time.Minute).UnixMilli(), TemperatureCelsius: weather.IntPtr(17), ConditionLabel: "Clear"},
		{TimestampMillis: now.Add(30 * time.Minute).UnixMilli(), TemperatureCelsius: weather.IntPtr(18), ConditionLabel: "Clouds"},
		{TimestampMillis: now.Add(90 * time.Minute).UnixMilli(), ConditionLabel: "Rain"},
	}
	report := &weather.Report{
		Current: weather.CurrentConditions{
			Name:               "Shimla",
			TemperatureCelsius: weather.IntPtr(25),
			ConditionLabel:     "Clear",
			HumidityPercent:    weather.FloatPtr(63),
		},
		Forecast: weather.ForecastWindow{Entries: entries},
		Provider: "openmeteo",
	}

	p := Render(State{Report: report, Theme: ThemeDay, Now: now, Location: time.UTC})

	if p.LocationName != "Shimla" || p.Temperature != "25°C" || p.Condition != "Clear" {
		t.Fatalf("unexpected current slots: %+v", p)
	}
	if p.Humidity != "Humidity: 63%" || p.Wind != "Wind: -- km/h" {
		t.Fatalf("unexpected humidity/wind: %q %q", p.Humidity, p.Wind)
	}
	if p.TemperatureColor != ColorWarm {
		t.Fatalf("expected warm color, got %s", p.TemperatureColor)
	}
	if len(p.Forecast) != 3 || p.ScrollIndex != 1 {
		t.Fatalf("expected 3 rows scrolled to 1, got %d rows at %d", len(p.Forecast), p.ScrollIndex)
	}
	if p.Forecast[1].DisplayTime != "1:00 PM" || p.Forecast[1].Temperature != "18°C" {
		t.Fatalf("unexpected row: %+v", p.Forecast[1])
	}
	if p.Forecast[2].Temperature != Placeholder {
		t.Fatalf("expected placeholder temperature, got %q", p.Forecast[2].Temperature)
	}
}

func TestRenderUnavailableForecast(t *testing.T) {
	report := &weather.Report{
		Current:  weather.CurrentConditions{TemperatureCelsius: weather.IntPtr(-3)},
		Forecast: weather.UnavailableWindow(),
	}
	p := Render(State{Report: report, Theme: ThemeDay})

	if p.LocationName != UnknownName {
		t.Fatalf("expected unknown name, got %q", p.LocationName)
	}
	if !p.ForecastUnavailable || len(p.Forecast) != 1 || p.Forecast[0].Condition != weather.UnavailableLabel {
		t.Fatalf("expected single unavailable row, got %+v", p.Forecast)
	}
	if p.TemperatureColor != ColorFreezing {
		t.Fatalf("expected freezing color, got %s", p.TemperatureColor)
	}
}

func TestDisplayTimeFallsBackToRawText(t *testing.T) {
	e := weather.ForecastEntry{RawTime: "2024-03-10 15:00:00"}
	if got := DisplayTime(e, time.UTC); got != "3:00 PM" {
		t.Fatalf("expected parsed raw time, got %q", got)
	}
	e = weather.ForecastEntry{RawTime: "tomorrow noon"}
	if got := DisplayTime(e, time.UTC); got != "tomorrow @ noon" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestHighlighterRestarts(t *testing.T) {
	h := NewHighlighter(100 * time.Millisecond)
	defer h.Stop()

	h.Trigger()
	time.Sleep(60 * time.Millisecond)
	h.Trigger()
	time.Sleep(60 * time.Millisecond)

	// 120ms after the first trigger, but only 60ms after the restart.
	if !h.Active() {
		t.Fatal("expected highlight still active after restart")
	}

	deadline := time.Now().Add(time.Second)
	for h.Active() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.Active() || h.Pending() {
		t.Fatal("expected highlight to expire with no pending timer")
	}
}

func TestHighlighterStop(t *testing.T) {
	h := NewHighlighter(time.Hour)
	h.Trigger()
	if !h.Active() || !h.Pending() {
		t.Fatal("expected active highlight")
	}
	h.Stop()
	if h.Active() || h.Pending() {
		t.Fatal("expected highlight cleared")
	}
}
