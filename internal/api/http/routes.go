package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/history"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// maxHistoryLimit bounds how many recent searches a single call may request.
const maxHistoryLimit = 20

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, searches *history.Store) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		doc, err := service.GetWeather(c.Context(), req.toQuery())
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(doc)
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		return c.JSON(service.Suggestions(c.Context(), c.Query("query")))
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", history.DefaultRecentLimit)
		if limit < 1 || limit > maxHistoryLimit {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
		}

		entries, err := searches.Recent(limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read search history")
		}
		return c.JSON(entries)
	})

	v1.Post("/history", func(c *fiber.Ctx) error {
		var req appendHistoryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entry, err := searches.Append(history.Entry{
			CityName:    req.CityName,
			SearchQuery: req.SearchQuery,
			Lat:         req.Lat,
			Lon:         req.Lon,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save search")
		}
		return c.JSON(entry)
	})

	v1.Delete("/history", func(c *fiber.Ctx) error {
		if err := searches.Clear(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear search history")
		}
		return c.JSON(fiber.Map{"success": true})
	})
}

// weatherQuery holds the bound query parameters for the weather endpoint.
type weatherQuery struct {
	City  string
	Lat   *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon   *float64 `validate:"omitempty,gte=-180,lte=180"`
	Units string   `validate:"oneof=metric imperial"`
}

func (q weatherQuery) toQuery() weather.Query {
	return weather.Query{
		City:  q.City,
		Lat:   q.Lat,
		Lon:   q.Lon,
		Units: weather.Units(q.Units),
	}
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery

	q.City = c.Query("city")
	q.Units = c.Query("units", string(weather.UnitsMetric))

	if v := c.Query("lat"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("invalid lat: %w", err)
		}
		q.Lat = &lat
	}
	if v := c.Query("lon"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("invalid lon: %w", err)
		}
		q.Lon = &lon
	}

	if q.City == "" && (q.Lat == nil || q.Lon == nil) {
		return q, errors.New("either city or both lat and lon query parameters are required")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// mapWeatherError translates the service error taxonomy to HTTP statuses:
// no geocoding match is 404, geocode-stage upstream failures are the
// caller's problem (bad query or credential) at 400, and data-fetch
// failures are 500.
func mapWeatherError(err error) error {
	var nfe *weather.NotFoundError
	if errors.As(err, &nfe) {
		return fiber.NewError(fiber.StatusNotFound, nfe.Error())
	}

	var ue *weather.UpstreamError
	if errors.As(err, &ue) {
		if ue.Stage == weather.StageGeocode {
			return fiber.NewError(fiber.StatusBadRequest, ue.Err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, ue.Err.Error())
	}

	if errors.Is(err, weather.ErrInvalidInput) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// appendHistoryRequest is the POST /history body.
type appendHistoryRequest struct {
	CityName    string   `json:"city_name" validate:"required"`
	SearchQuery string   `json:"search_query" validate:"required"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}
