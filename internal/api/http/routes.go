package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/mapview"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/render"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// ErrorHandler is the centralized error response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. searcher may be
// nil, in which case /places answers from the known-city list only.
func RegisterRoutes(app *fiber.App, session *dashboard.Session, service *weather.Service, searcher geocode.Searcher) {
	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-dashboard",
			"mode":     service.Mode(),
			"provider": service.ProviderName(),
		})
	})

	v1.Get("/metrics", adaptor.HTTPHandler(observability.Handler()))

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(session.View())
	})

	v1.Post("/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		session.SelectPlace(req.Name, weather.Coordinates{Lat: *req.Lat, Lon: *req.Lon})
		return c.Status(fiber.StatusAccepted).JSON(session.View())
	})

	v1.Post("/recent", func(c *fiber.Ctx) error {
		var req recentRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := session.SelectRecent(req.Name); err != nil {
			if errors.Is(err, dashboard.ErrUnknownPlace) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to select recent place")
		}
		return c.Status(fiber.StatusAccepted).JSON(session.View())
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"places": session.History()})
	})

	v1.Post("/search/input", func(c *fiber.Ctx) error {
		var req inputRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		session.Input(req.Text)
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Post("/search/submit", func(c *fiber.Ctx) error {
		if !session.SubmitSearch() {
			return fiber.NewError(fiber.StatusNotFound, "no suggestions to select")
		}
		return c.Status(fiber.StatusAccepted).JSON(session.View())
	})

	v1.Get("/search/suggestions", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"text":        session.SearchText(),
			"suggestions": session.Suggestions(),
		})
	})

	v1.Get("/places", func(c *fiber.Ctx) error {
		q := placesQuery{Query: c.Query("q")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		places := geocode.MatchPrefix(q.Query, 4)
		if searcher != nil {
			results, err := searcher.Search(c.UserContext(), q.Query)
			if err != nil {
				return fiber.NewError(fiber.StatusBadGateway, "place search failed")
			}
			places = append(places, results...)
		}
		return c.JSON(fiber.Map{"places": places})
	})

	v1.Post("/viewport", func(c *fiber.Ctx) error {
		var req viewportRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		session.Resize(req.Width)
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Get("/map", func(c *fiber.Ctx) error {
		return c.JSON(session.Map())
	})

	v1.Post("/map/overlay", func(c *fiber.Ctx) error {
		var req overlayRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := session.SetOverlay(req.Layer); err != nil {
			switch {
			case errors.Is(err, mapview.ErrOverlaysDisabled):
				return fiber.NewError(fiber.StatusConflict, mapview.OverlaysDisabledNotice)
			case errors.Is(err, mapview.ErrUnknownLayer):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to set overlay")
		}
		return c.JSON(session.Map())
	})

	v1.Post("/map/refresh", func(c *fiber.Ctx) error {
		session.RefreshMap()
		return c.JSON(session.Map())
	})

	v1.Post("/map/fullscreen", func(c *fiber.Ctx) error {
		session.ToggleFullscreen()
		return c.JSON(session.Map())
	})

	v1.Get("/theme", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"theme": session.Theme()})
	})

	v1.Put("/theme", func(c *fiber.Ctx) error {
		var req themeRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		session.SetTheme(render.Theme(req.Theme))
		return c.JSON(fiber.Map{"theme": session.Theme()})
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.FetchWeather(c.UserContext(), weather.Coordinates{Lat: q.Lat, Lon: q.Lon}, q.Name)
		if err != nil {
			if errors.Is(err, weather.ErrInvalidCoordinates) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}
		return c.JSON(session.RenderReport(report))
	})
}

type selectRequest struct {
	Name string   `json:"name" validate:"required"`
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

type recentRequest struct {
	Name string `json:"name" validate:"required"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type viewportRequest struct {
	Width int `json:"width" validate:"gt=0"`
}

type overlayRequest struct {
	Layer string `json:"layer"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=day night"`
}

type placesQuery struct {
	Query string `validate:"required,min=2"`
}

// weatherQuery holds query parameters for the stateless weather endpoint.
type weatherQuery struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Name string
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, errors.New("invalid lat")
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, errors.New("invalid lon")
	}
	q.Name = c.Query("name")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// bindJSON decodes and validates a request body.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
