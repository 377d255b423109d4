// Package httpapi exposes the weather cache over HTTP. Handlers are thin:
// they decide when to request freshness and then return whatever the cache
// holds, stale data and error indicators included.
package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/avasiliev/weathercache/internal/cache"
	"github.com/avasiliev/weathercache/internal/geo"
	"github.com/avasiliev/weathercache/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, c *cache.Cache, search *geo.SearchService) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(ctx *fiber.Ctx) error {
		loc, err := parseLocationQuery(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		_ = c.EnsureCurrent(ctx.Context(), loc)
		res := c.Current(loc.Key())
		return respondResource(ctx, res, res.Data != nil, res.Err)
	})

	v1.Get("/weather/forecast", func(ctx *fiber.Ctx) error {
		loc, err := parseLocationQuery(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		_ = c.EnsureForecast(ctx.Context(), loc)
		res := c.Forecast(loc.Key())
		return respondResource(ctx, res, res.Data != nil, res.Err)
	})

	v1.Get("/weather/alerts", func(ctx *fiber.Ctx) error {
		loc, err := parseLocationQuery(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		_ = c.EnsureAlerts(ctx.Context(), loc)
		res := c.Alerts(loc.Key())
		return respondResource(ctx, res, res.Data != nil, res.Err)
	})

	v1.Delete("/weather/current", func(ctx *fiber.Ctx) error {
		loc, err := parseLocationQuery(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		c.ClearCurrent(loc.Key())
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/weather/forecast", func(ctx *fiber.Ctx) error {
		loc, err := parseLocationQuery(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		c.ClearForecast(loc.Key())
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/weather/alerts", func(ctx *fiber.Ctx) error {
		loc, err := parseLocationQuery(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		c.ClearAlerts(loc.Key())
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/locations/search", func(ctx *fiber.Ctx) error {
		query := ctx.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		loc, err := search.Search(query)
		if err != nil {
			if errors.Is(err, geo.ErrNoCredential) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "location search is not configured")
			}
			return fiber.NewError(fiber.StatusNotFound, "no location found for query")
		}
		return ctx.JSON(fiber.Map{
			"location":    loc,
			"locationKey": loc.Key(),
		})
	})
}

// locationQuery holds the query parameters identifying a location.
type locationQuery struct {
	Lat  float64 `validate:"latitude"`
	Lon  float64 `validate:"longitude"`
	ID   string
	Name string
}

func parseLocationQuery(ctx *fiber.Ctx) (weather.Location, error) {
	latStr := ctx.Query("lat")
	lonStr := ctx.Query("lon")
	if latStr == "" || lonStr == "" {
		return weather.Location{}, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Location{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Location{}, errors.New("lon must be a number")
	}

	q := locationQuery{
		Lat:  lat,
		Lon:  lon,
		ID:   ctx.Query("id"),
		Name: ctx.Query("name"),
	}
	if err := validate.Struct(q); err != nil {
		return weather.Location{}, errors.New("lat/lon out of range")
	}

	return weather.Location{
		Lat:  q.Lat,
		Lon:  q.Lon,
		ID:   q.ID,
		Name: q.Name,
	}, nil
}

// respondResource returns the cache slot as-is. Slots holding data respond
// 200 even when the latest refresh failed, so consumers can show stale data
// next to an error indicator. Only a data-less error maps onto an HTTP
// failure status.
func respondResource[T any](ctx *fiber.Ctx, res cache.Resource[T], hasData bool, werr *weather.Error) error {
	if werr != nil && !hasData {
		if werr.Kind == weather.ErrRateLimit && werr.RetryAfter > 0 {
			ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(werr.RetryAfter.Seconds())))
		}
		return ctx.Status(errorStatus(werr)).JSON(res)
	}
	return ctx.JSON(res)
}

func errorStatus(werr *weather.Error) int {
	switch werr.Kind {
	case weather.ErrRateLimit:
		return fiber.StatusTooManyRequests
	case weather.ErrConfig:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadGateway
	}
}
