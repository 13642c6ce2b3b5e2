// Package dashboard owns the live dashboard session: the selected place,
// the weather view, recent selections, suggestions, theme and map layout.
// It is the only writer of session state; the HTTP layer reads snapshots.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/debounce"
	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/mapview"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/prefs"
	"github.com/i474232898/weather-dashboard/internal/render"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultResizeDebounce = 200 * time.Millisecond

	// minQueryLength is the shortest trimmed input that produces suggestions.
	minQueryLength = 2
	// localSuggestionLimit caps known-city matches shown before remote results.
	localSuggestionLimit = 4
)

var ErrUnknownPlace = errors.New("place is not a recent selection or known city")

// WeatherFetcher is the weather capability the session depends on.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, coords weather.Coordinates, displayName string) (weather.Report, error)
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	SearchDebounce    time.Duration
	ResizeDebounce    time.Duration
	HighlightDuration time.Duration
	ViewportWidth     int
	// Location is the time zone forecast times are displayed in.
	Location *time.Location
}

// Session is a single dashboard. All exported methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	fetcher  WeatherFetcher
	searcher geocode.Searcher
	mapView  mapview.Widget
	history  *store.HistoryStore
	prefs    prefs.Store

	highlight      *render.Highlighter
	searchDebounce *debounce.Debouncer
	resizeDebounce *debounce.Debouncer
	location       *time.Location
	now            func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	searchText    string
	suggestions   []weather.Place
	loading       bool
	report        *weather.Report
	selected      *weather.Place
	theme         render.Theme
	viewportWidth int

	// latest is the token of the most recently issued fetch.
	latest uint64
	// searchSeq orders debounced suggestion lookups.
	searchSeq uint64

	inflight sync.WaitGroup
}

// New creates a Session. searcher may be nil, in which case suggestions come
// from the known-city list only. The theme is read from store once; a read
// failure falls back to the time-of-day default.
func New(fetcher WeatherFetcher, searcher geocode.Searcher, m mapview.Widget, history *store.HistoryStore, ps prefs.Store, opts Options) *Session {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.ResizeDebounce <= 0 {
		opts.ResizeDebounce = DefaultResizeDebounce
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = mapview.DefaultViewportWidth
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		fetcher:        fetcher,
		searcher:       searcher,
		mapView:        m,
		history:        history,
		prefs:          ps,
		highlight:      render.NewHighlighter(opts.HighlightDuration),
		searchDebounce: debounce.New(opts.SearchDebounce),
		resizeDebounce: debounce.New(opts.ResizeDebounce),
		location:       opts.Location,
		now:            time.Now,
		ctx:            ctx,
		cancel:         cancel,
		viewportWidth:  opts.ViewportWidth,
	}

	stored, _ := ps.Get(ctx, prefs.ThemeKey)
	s.theme = render.DetectTheme(stored, s.now().In(s.location))
	return s
}

// SelectPlace makes name the active place: the search box shows it, the
// suggestions close, the map recenters with a marker, the place joins the
// recent selections and a weather fetch starts. The steps are not
// transactional; a failed fetch leaves the map and history updated.
func (s *Session) SelectPlace(name string, coords weather.Coordinates) {
	s.mu.Lock()
	s.searchText = name
	s.suggestions = nil
	// Lookups already in flight must not reopen the list.
	s.searchSeq++
	s.loading = true
	zoom := mapview.ZoomForWidth(s.viewportWidth)
	s.mu.Unlock()

	s.searchDebounce.Cancel()
	s.mapView.SetView(coords, zoom)
	s.mapView.SetMarker(coords, name)
	s.history.Add(weather.Place{Name: name, Coords: coords})
	s.FetchWeather(coords, name)
}

// SelectRecent re-selects a recent selection by name. Names missing from the
// history are looked up in the known-city list.
func (s *Session) SelectRecent(name string) error {
	p, err := s.history.Get(name)
	if err != nil {
		city, ok := geocode.LookupCity(name)
		if !ok {
			return ErrUnknownPlace
		}
		p = city
	}
	s.SelectPlace(p.Name, p.Coords)
	return nil
}

// FetchWeather starts a fetch on its own goroutine and returns its token.
// Only the completion carrying the latest token is applied; earlier ones are
// dropped, so the view always reflects the last request issued.
func (s *Session) FetchWeather(coords weather.Coordinates, displayName string) uint64 {
	s.mu.Lock()
	s.latest++
	token := s.latest
	s.loading = true
	s.selected = &weather.Place{Name: displayName, Coords: coords}
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		report, err := s.fetcher.FetchWeather(s.ctx, coords, displayName)
		s.apply(token, report, err)
	}()
	return token
}

func (s *Session) apply(token uint64, report weather.Report, err error) {
	s.mu.Lock()
	if token != s.latest {
		s.mu.Unlock()
		observability.StaleResults.Inc()
		slog.Debug("discarding stale weather result", "token", token, "place", report.Current.Name)
		return
	}
	s.loading = false

	if err != nil {
		slog.Error("weather fetch failed", "token", token, "err", err)
		failed := weather.Report{Forecast: weather.UnavailableWindow()}
		if s.report != nil {
			failed = *s.report
		}
		failed.Current.Name = render.ErrorName
		s.report = &failed
		s.mu.Unlock()
		return
	}

	s.report = &report
	s.mu.Unlock()
	s.highlight.Trigger()
}

// Input records the search box text and schedules a suggestion lookup.
// Each keystroke restarts the debounce.
func (s *Session) Input(text string) {
	s.mu.Lock()
	s.searchText = text
	s.mu.Unlock()

	query := strings.TrimSpace(text)
	s.searchDebounce.Schedule(func() { s.suggest(query) })
}

// suggest replaces the suggestions with known-city prefix matches followed
// by the searcher's results. A failed search keeps the local matches.
func (s *Session) suggest(query string) {
	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.suggestions = nil
	if len([]rune(query)) < minQueryLength {
		s.mu.Unlock()
		return
	}
	s.suggestions = geocode.MatchPrefix(query, localSuggestionLimit)
	s.mu.Unlock()

	if s.searcher == nil {
		return
	}
	results, err := s.searcher.Search(s.ctx, query)
	if err != nil {
		slog.Warn("place search failed", "searcher", s.searcher.Name(), "query", query, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.searchSeq {
		return
	}
	s.suggestions = append(s.suggestions, results...)
}

// SubmitSearch selects the first suggestion. It reports false when there is
// none.
func (s *Session) SubmitSearch() bool {
	s.mu.Lock()
	if len(s.suggestions) == 0 {
		s.mu.Unlock()
		return false
	}
	first := s.suggestions[0]
	s.mu.Unlock()

	s.SelectPlace(first.Name, first.Coords)
	return true
}

// Suggestions returns a copy of the current suggestions.
func (s *Session) Suggestions() []weather.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]weather.Place, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// SearchText returns the search box text.
func (s *Session) SearchText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchText
}

// History returns the recent selections, oldest first.
func (s *Session) History() []weather.Place {
	return s.history.List()
}

// Selected returns the place of the latest fetch, if any.
func (s *Session) Selected() (weather.Place, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return weather.Place{}, false
	}
	return *s.selected, true
}

// Resize records the viewport width and, once resizing settles, recenters
// the map on its marker at the zoom for the new width. Center and marker
// position are otherwise untouched.
func (s *Session) Resize(width int) {
	s.mu.Lock()
	s.viewportWidth = width
	s.mu.Unlock()

	s.resizeDebounce.Schedule(func() {
		s.mu.Lock()
		zoom := mapview.ZoomForWidth(s.viewportWidth)
		s.mu.Unlock()
		s.mapView.SetView(s.mapView.MarkerPosition(), zoom)
	})
}

// SetOverlay selects a weather overlay layer; "" removes it.
func (s *Session) SetOverlay(layer string) error {
	return s.mapView.SetOverlay(layer)
}

// RefreshMap reloads the overlay tiles.
func (s *Session) RefreshMap() {
	s.mapView.Refresh()
}

func (s *Session) ToggleFullscreen() bool {
	return s.mapView.ToggleFullscreen()
}

// Map returns the current map view.
func (s *Session) Map() mapview.View {
	return s.mapView.Snapshot()
}

// SetTheme applies t and persists it. Persistence failures are ignored.
func (s *Session) SetTheme(t render.Theme) {
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	if err := s.prefs.Set(s.ctx, prefs.ThemeKey, string(t)); err != nil {
		slog.Debug("theme not persisted", "err", err)
	}
}

// ToggleTheme switches to night when night is true, day otherwise.
func (s *Session) ToggleTheme(night bool) render.Theme {
	t := render.ThemeDay
	if night {
		t = render.ThemeNight
	}
	s.SetTheme(t)
	return t
}

func (s *Session) Theme() render.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// View renders the current presentation.
func (s *Session) View() render.Presentation {
	s.mu.Lock()
	st := render.State{
		Report:   s.report,
		Loading:  s.loading,
		Theme:    s.theme,
		Now:      s.now(),
		Location: s.location,
	}
	s.mu.Unlock()

	st.Highlight = s.highlight.Active()
	return render.Render(st)
}

// RenderReport renders a report outside the session, with the session's
// theme and display time zone. Session state is not changed.
func (s *Session) RenderReport(report weather.Report) render.Presentation {
	s.mu.Lock()
	st := render.State{
		Report:   &report,
		Theme:    s.theme,
		Now:      s.now(),
		Location: s.location,
	}
	s.mu.Unlock()
	return render.Render(st)
}

// Wait blocks until in-flight weather fetches complete.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Close cancels in-flight requests and pending timers, then waits for the
// fetches to finish.
func (s *Session) Close() {
	s.searchDebounce.Cancel()
	s.resizeDebounce.Cancel()
	s.highlight.Stop()
	s.cancel()
	s.inflight.Wait()
}
