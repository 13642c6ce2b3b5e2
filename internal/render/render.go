// Package render projects the live weather state into the strings and
// flags the dashboard shell paints. Render is pure: everything it needs,
// including the clock reading, arrives in State.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	Placeholder = "--"
	UnknownName = "Unknown"
	ErrorName   = "Error"

	displayTimeLayout = "3:04 PM"
)

// State is everything the renderer reads.
type State struct {
	Report    *weather.Report
	Loading   bool
	Highlight bool
	Theme     Theme
	Now       time.Time
	// Location is the time zone used for forecast display times.
	Location *time.Location
}

// ForecastItem is one painted forecast row.
type ForecastItem struct {
	TimestampMillis int64  `json:"timestampMillis,omitempty"`
	DisplayTime     string `json:"time"`
	Temperature     string `json:"temp"`
	Condition       string `json:"cond"`
}

// Presentation is the content of every named slot on the weather card.
type Presentation struct {
	LocationName     string         `json:"locationName"`
	Temperature      string         `json:"temperature"`
	Condition        string         `json:"condition"`
	Humidity         string         `json:"humidity"`
	Wind             string         `json:"wind"`
	TemperatureColor string         `json:"temperatureColor"`
	Forecast         []ForecastItem `json:"forecast"`
	// ScrollIndex is the forecast row the list scrolls to after painting.
	ScrollIndex         int    `json:"scrollIndex"`
	ForecastUnavailable bool   `json:"forecastUnavailable,omitempty"`
	Loading             bool   `json:"loading"`
	Highlight           bool   `json:"highlight"`
	Theme               Theme  `json:"theme"`
	Provider            string `json:"provider,omitempty"`
}

// Render builds the presentation for s.
func Render(s State) Presentation {
	p := Presentation{
		LocationName:     Placeholder,
		Temperature:      Placeholder + "°C",
		Condition:        Placeholder,
		Humidity:         "Humidity: " + Placeholder + "%",
		Wind:             "Wind: " + Placeholder + " km/h",
		TemperatureColor: DefaultTempColor(s.Theme),
		Forecast:         []ForecastItem{},
		Loading:          s.Loading,
		Highlight:        s.Highlight,
		Theme:            s.Theme,
	}
	if s.Report == nil {
		return p
	}

	cur := s.Report.Current
	p.Provider = s.Report.Provider
	p.LocationName = orDefault(cur.Name, UnknownName)
	p.Temperature = intOrPlaceholder(cur.TemperatureCelsius) + "°C"
	p.Condition = orDefault(cur.ConditionLabel, Placeholder)
	p.Humidity = "Humidity: " + numberOrPlaceholder(cur.HumidityPercent) + "%"
	if cur.WindSpeed != nil {
		p.Wind = fmt.Sprintf("Wind: %.1f km/h", *cur.WindSpeed)
	}

	var temp *float64
	if cur.TemperatureCelsius != nil {
		temp = weather.FloatPtr(float64(*cur.TemperatureCelsius))
	}
	p.TemperatureColor = TemperatureToColor(temp, DefaultTempColor(s.Theme))

	p.Forecast, p.ScrollIndex = renderForecast(s.Report.Forecast, s.Now, s.Location)
	p.ForecastUnavailable = s.Report.Forecast.Unavailable || len(s.Report.Forecast.Entries) == 0
	return p
}

// renderForecast rebuilds the whole list; nothing of a previous render
// survives. The scroll target is the nearest upcoming entry at render time.
func renderForecast(w weather.ForecastWindow, now time.Time, loc *time.Location) ([]ForecastItem, int) {
	if w.Unavailable || len(w.Entries) == 0 {
		return []ForecastItem{{Condition: weather.UnavailableLabel}}, 0
	}
	if loc == nil {
		loc = time.Local
	}

	items := make([]ForecastItem, 0, len(w.Entries))
	for _, e := range w.Entries {
		temp := Placeholder
		if e.TemperatureCelsius != nil {
			temp = strconv.Itoa(*e.TemperatureCelsius) + "°C"
		}
		items = append(items, ForecastItem{
			TimestampMillis: e.TimestampMillis,
			DisplayTime:     DisplayTime(e, loc),
			Temperature:     temp,
			Condition:       e.ConditionLabel,
		})
	}
	return items, weather.NearestUpcomingIndex(w.Entries, now)
}

// DisplayTime formats an entry's time as hour and minute. Entries without a
// timestamp fall back to their raw provider text.
func DisplayTime(e weather.ForecastEntry, loc *time.Location) string {
	if e.TimestampMillis != 0 {
		return e.Time().In(loc).Format(displayTimeLayout)
	}
	if e.RawTime == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, e.RawTime, loc); err == nil {
			return t.In(loc).Format(displayTimeLayout)
		}
	}
	return strings.Replace(e.RawTime, " ", " @ ", 1)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOrPlaceholder(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}

func numberOrPlaceholder(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
