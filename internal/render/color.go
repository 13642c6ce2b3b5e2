package render

import "math"

// Temperature buckets, coldest first.
const (
	ColorFreezing = "#6ec3ff"
	ColorCold     = "#7fe0c9"
	ColorMild     = "#ffd57a"
	ColorWarm     = "#ffb36b"
	ColorHot      = "#ff6b6b"
)

// TemperatureToColor maps a temperature in °C to one of five fixed colors
// at the <=0, <=10, <=20, <=30 thresholds. A missing or NaN temperature
// yields themeDefault.
func TemperatureToColor(t *float64, themeDefault string) string {
	if t == nil || math.IsNaN(*t) {
		return themeDefault
	}
	switch v := *t; {
	case v <= 0:
		return ColorFreezing
	case v <= 10:
		return ColorCold
	case v <= 20:
		return ColorMild
	case v <= 30:
		return ColorWarm
	default:
		return ColorHot
	}
}
