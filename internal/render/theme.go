package render

import "time"

// Theme is the day/night presentation theme.
type Theme string

const (
	ThemeDay   Theme = "day"
	ThemeNight Theme = "night"
)

// ParseTheme accepts only the two known theme names.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeDay, ThemeNight:
		return Theme(s), true
	}
	return "", false
}

// DetectTheme returns the stored theme when it is valid, otherwise day
// between 07:00 and 19:00 local time and night outside it.
func DetectTheme(stored string, now time.Time) Theme {
	if t, ok := ParseTheme(stored); ok {
		return t
	}
	if h := now.Hour(); h >= 7 && h < 19 {
		return ThemeDay
	}
	return ThemeNight
}

// DefaultTempColor is the theme's neutral temperature color, used when
// there is no temperature to map.
func DefaultTempColor(t Theme) string {
	if t == ThemeNight {
		return "#e6eef8"
	}
	return "#24445c"
}
