package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/mapview"
	"github.com/i474232898/weather-dashboard/internal/prefs"
	"github.com/i474232898/weather-dashboard/internal/render"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type stubProvider struct{}

func (stubProvider) Name() string               { return "stub" }
func (stubProvider) Mode() weather.ProviderMode { return weather.ModeFallback }

func (stubProvider) Fetch(ctx context.Context, coords weather.Coordinates, name string) (weather.Report, error) {
	return weather.Report{
		Current: weather.CurrentConditions{
			Name:               name,
			TemperatureCelsius: weather.IntPtr(22),
			ConditionLabel:     "Clear",
		},
		Forecast: weather.UnavailableWindow(),
		Provider: "stub",
	}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *dashboard.Session) {
	t.Helper()

	svc := weather.NewService(stubProvider{})
	m := mapview.NewState(geocode.DefaultPlace, mapview.ZoomDesktop, nil)
	session := dashboard.New(svc, nil, m, store.NewHistoryStore(0), prefs.NewMemoryStore(), dashboard.Options{
		SearchDebounce: 5 * time.Millisecond,
		ResizeDebounce: 5 * time.Millisecond,
	})
	t.Cleanup(session.Close)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, session, svc, nil)
	return app, session
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

func TestSelectAndView(t *testing.T) {
	app, session := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/api/v1/select", `{"name":"Shimla","lat":31.1048,"lon":77.1734}`)
	expectStatus(t, resp, http.StatusAccepted)
	session.Wait()

	resp = do(t, app, http.MethodGet, "/api/v1/view", "")
	expectStatus(t, resp, http.StatusOK)

	var view render.Presentation
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.LocationName != "Shimla" || view.Temperature != "22°C" {
		t.Fatalf("unexpected view: %+v", view)
	}

	resp = do(t, app, http.MethodGet, "/api/v1/history", "")
	var history struct {
		Places []weather.Place `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history.Places) != 1 || history.Places[0].Name != "Shimla" {
		t.Fatalf("unexpected history: %+v", history.Places)
	}
}

func TestSelectValidation(t *testing.T) {
	app, _ := newTestApp(t)

	for _, body := range []string{
		`{"lat":31.1,"lon":77.1}`,
		`{"name":"Nowhere","lat":95,"lon":0}`,
		`{"name":"Nowhere","lon":0}`,
		`not json`,
	} {
		resp := do(t, app, http.MethodPost, "/api/v1/select", body)
		expectStatus(t, resp, http.StatusBadRequest)
	}
}

func TestRecentUnknownPlace(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/api/v1/recent", `{"name":"Atlantis"}`)
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, app, http.MethodPost, "/api/v1/recent", `{"name":"Delhi"}`)
	expectStatus(t, resp, http.StatusAccepted)
}

func TestSearchInputAndSubmit(t *testing.T) {
	app, session := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/api/v1/search/submit", "")
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, app, http.MethodPost, "/api/v1/search/input", `{"text":"Jai"}`)
	expectStatus(t, resp, http.StatusAccepted)

	deadline := time.Now().Add(time.Second)
	for len(session.Suggestions()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resp = do(t, app, http.MethodGet, "/api/v1/search/suggestions", "")
	var body struct {
		Text        string          `json:"text"`
		Suggestions []weather.Place `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Text != "Jai" || len(body.Suggestions) != 1 || body.Suggestions[0].Name != "Jaipur" {
		t.Fatalf("unexpected suggestions: %+v", body)
	}

	resp = do(t, app, http.MethodPost, "/api/v1/search/submit", "")
	expectStatus(t, resp, http.StatusAccepted)
	session.Wait()
	if session.View().LocationName != "Jaipur" {
		t.Fatalf("expected Jaipur selected, got %q", session.View().LocationName)
	}
}

func TestPlacesRequiresQuery(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/v1/places?q=D", "")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, http.MethodGet, "/api/v1/places?q=de", "")
	expectStatus(t, resp, http.StatusOK)
}

func TestMapOverlayWithoutKey(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/api/v1/map/overlay", `{"layer":"clouds_new"}`)
	expectStatus(t, resp, http.StatusConflict)

	resp = do(t, app, http.MethodPost, "/api/v1/map/refresh", "")
	expectStatus(t, resp, http.StatusOK)

	var view mapview.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Revision != 1 || view.Timestamp != mapview.OverlaysDisabledNotice {
		t.Fatalf("unexpected map view: %+v", view)
	}
}

func TestViewportValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/api/v1/viewport", `{"width":0}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, http.MethodPost, "/api/v1/viewport", `{"width":480}`)
	expectStatus(t, resp, http.StatusAccepted)
}

func TestTheme(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodPut, "/api/v1/theme", `{"theme":"sepia"}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, http.MethodPut, "/api/v1/theme", `{"theme":"night"}`)
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, app, http.MethodGet, "/api/v1/theme", "")
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Theme != "night" {
		t.Fatalf("expected night, got %q", body.Theme)
	}
}

func TestStatelessWeather(t *testing.T) {
	app, session := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/v1/weather?lat=abc&lon=1", "")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, http.MethodGet, "/api/v1/weather?lat=18.52&lon=73.85&name=Pune", "")
	expectStatus(t, resp, http.StatusOK)

	var view render.Presentation
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.LocationName != "Pune" || !view.ForecastUnavailable {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(session.History()) != 0 {
		t.Fatal("stateless fetch must not touch the session")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/v1/health", "")
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, app, http.MethodGet, "/api/v1/metrics", "")
	expectStatus(t, resp, http.StatusOK)
}
