package weather

import (
	"math"
	"sort"
	"time"
)

const (
	// WindowSize is the maximum number of entries in a ForecastWindow.
	WindowSize = 24
	// WindowSpan is the look-ahead covered by a ForecastWindow.
	WindowSpan = 24 * time.Hour

	// discreteFallbackCount is how many raw samples the 3-hourly forecast
	// path keeps when nothing falls inside the window (8 x 3h ~ 24h).
	discreteFallbackCount = 8

	UnavailableLabel = "Forecast unavailable"
)

// Sample is a provider-agnostic raw forecast sample.
type Sample struct {
	TimestampMillis int64
	RawTime         string
	Temperature     *float64
	Label           string
}

// RoundTemp rounds half up, matching how the dashboard has always shown
// temperatures (-2.5 becomes -2, 2.5 becomes 3).
func RoundTemp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// RoundedTemp rounds an optional temperature. NaN and nil stay unknown.
func RoundedTemp(v *float64) *int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return IntPtr(RoundTemp(*v))
}

// MapSamples converts raw samples into forecast entries.
func MapSamples(samples []Sample) []ForecastEntry {
	entries := make([]ForecastEntry, 0, len(samples))
	for _, s := range samples {
		entries = append(entries, ForecastEntry{
			TimestampMillis:    s.TimestampMillis,
			RawTime:            s.RawTime,
			TemperatureCelsius: RoundedTemp(s.Temperature),
			ConditionLabel:     s.Label,
		})
	}
	return entries
}

// WindowFromSamples builds the window for the discrete (3-hourly) forecast
// path: entries inside [now, now+24h] are kept; when none qualify the first
// eight raw samples are used instead.
func WindowFromSamples(samples []Sample, now time.Time) ForecastWindow {
	if len(samples) == 0 {
		return UnavailableWindow()
	}

	from := now.UnixMilli()
	to := now.Add(WindowSpan).UnixMilli()

	entries := MapSamples(samples)
	inWindow := make([]ForecastEntry, 0, len(entries))
	for _, e := range entries {
		if e.TimestampMillis >= from && e.TimestampMillis <= to {
			inWindow = append(inWindow, e)
		}
	}
	if len(inWindow) == 0 {
		n := min(discreteFallbackCount, len(entries))
		inWindow = entries[:n]
	}

	return NewWindow(inWindow, now)
}

// WindowFromSeries builds the window for an hourly series by index: it finds
// the first sample at or after now (or the first sample when all are in the
// past) and takes up to 24 consecutive samples. The result is non-empty
// whenever the series is.
func WindowFromSeries(series []Sample, now time.Time) ForecastWindow {
	if len(series) == 0 {
		return UnavailableWindow()
	}

	cutoff := now.UnixMilli()
	idx := -1
	for i, s := range series {
		if s.TimestampMillis >= cutoff {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	end := min(idx+WindowSize, len(series))

	return NewWindow(MapSamples(series[idx:end]), now)
}

// NewWindow orders entries by timestamp, caps them to WindowSize and
// computes the nearest-upcoming index relative to now. An empty input
// yields the unavailable window.
func NewWindow(entries []ForecastEntry, now time.Time) ForecastWindow {
	if len(entries) == 0 {
		return UnavailableWindow()
	}

	sorted := make([]ForecastEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMillis < sorted[j].TimestampMillis
	})
	if len(sorted) > WindowSize {
		sorted = sorted[:WindowSize]
	}

	return ForecastWindow{
		Entries:      sorted,
		NearestIndex: NearestUpcomingIndex(sorted, now),
	}
}

// NearestUpcomingIndex returns the first entry whose time is not earlier
// than now, or 0 when every entry is in the past.
func NearestUpcomingIndex(entries []ForecastEntry, now time.Time) int {
	cutoff := now.UnixMilli()
	for i, e := range entries {
		if e.TimestampMillis >= cutoff {
			return i
		}
	}
	return 0
}

// UnavailableWindow is the single synthetic entry shown when forecast data
// is missing or malformed.
func UnavailableWindow() ForecastWindow {
	return ForecastWindow{
		Entries:     []ForecastEntry{{ConditionLabel: UnavailableLabel}},
		Unavailable: true,
	}
}
