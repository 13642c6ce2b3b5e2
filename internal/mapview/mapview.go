// Package mapview holds the state of the interactive map the dashboard
// shell renders: center, zoom, marker, overlay layer and layout flags.
package mapview

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	ZoomPhone   = 8
	ZoomTablet  = 9
	ZoomDesktop = 10

	// DefaultViewportWidth is assumed when the shell has not reported one.
	DefaultViewportWidth = 980

	OverlaysDisabledNotice = "Weather overlays require OpenWeather API key"
)

var (
	ErrOverlaysDisabled = errors.New("weather overlays are disabled")
	ErrUnknownLayer     = errors.New("unknown overlay layer")
)

// OverlayLayers are the weather tile layers the shell may select.
var OverlayLayers = []string{"clouds_new", "precipitation_new", "pressure_new", "wind_new", "temp_new"}

// ZoomForWidth picks the zoom level framing a place for a viewport width:
// phones get the farthest view, desktops the closest.
func ZoomForWidth(width int) int {
	if width <= 0 {
		width = DefaultViewportWidth
	}
	switch {
	case width <= 520:
		return ZoomPhone
	case width <= 900:
		return ZoomTablet
	default:
		return ZoomDesktop
	}
}

// Map is the map widget as seen by the place selection controller.
type Map interface {
	SetView(center weather.Coordinates, zoom int)
	SetMarker(pos weather.Coordinates, popup string)
	MarkerPosition() weather.Coordinates
}

// Widget is the full map surface: the widget plus the overlay, refresh and
// layout controls around it.
type Widget interface {
	Map
	SetOverlay(layer string) error
	Refresh()
	ToggleFullscreen() bool
	Snapshot() View
}

// TileSource builds overlay tile URL templates.
type TileSource interface {
	TileURL(layer string) string
}

// View is a snapshot of the map state.
type View struct {
	Center          weather.Coordinates `json:"center"`
	Zoom            int                 `json:"zoom"`
	Marker          weather.Coordinates `json:"marker"`
	Popup           string              `json:"popup"`
	Overlay         string              `json:"overlay,omitempty"`
	OverlayURL      string              `json:"overlayUrl,omitempty"`
	OverlaysEnabled bool                `json:"overlaysEnabled"`
	Timestamp       string              `json:"timestamp"`
	Fullscreen      bool                `json:"fullscreen"`
	// Revision changes whenever tiles must be reloaded.
	Revision int `json:"revision"`
}

// State is the in-memory Map implementation backing the HTTP API.
type State struct {
	mu    sync.RWMutex
	view  View
	tiles TileSource
	now   func() time.Time
}

// NewState centers the map on start. A nil tiles source disables overlays.
func NewState(start weather.Place, zoom int, tiles TileSource) *State {
	s := &State{
		view: View{
			Center:          start.Coords,
			Zoom:            zoom,
			Marker:          start.Coords,
			Popup:           start.Name,
			OverlaysEnabled: tiles != nil,
		},
		tiles: tiles,
		now:   time.Now,
	}
	s.view.Timestamp = s.timestamp()
	return s
}

func (s *State) SetView(center weather.Coordinates, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Center = center
	s.view.Zoom = zoom
}

func (s *State) SetMarker(pos weather.Coordinates, popup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Marker = pos
	s.view.Popup = popup
}

func (s *State) MarkerPosition() weather.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Marker
}

// SetOverlay switches the weather overlay; an empty layer removes it.
func (s *State) SetOverlay(layer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer == "" {
		s.view.Overlay = ""
		s.view.OverlayURL = ""
		s.view.Timestamp = s.timestamp()
		return nil
	}
	if s.tiles == nil {
		return ErrOverlaysDisabled
	}
	if !slices.Contains(OverlayLayers, layer) {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}
	s.view.Overlay = layer
	s.view.OverlayURL = s.tiles.TileURL(layer)
	s.view.Timestamp = s.timestamp()
	return nil
}

// Refresh asks the shell to reload the current overlay tiles.
func (s *State) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Revision++
	s.view.Timestamp = s.timestamp()
}

// ToggleFullscreen flips the expanded layout and returns the new value.
func (s *State) ToggleFullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Fullscreen = !s.view.Fullscreen
	return s.view.Fullscreen
}

func (s *State) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *State) timestamp() string {
	if s.tiles == nil {
		return OverlaysDisabledNotice
	}
	return "Map: " + s.now().Format("02/01/2006, 15:04:05")
}
