package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tcmclinic/clinic/internal/platform/metrics"
)

// Metrics records per-request prometheus counters keyed by the route
// template, so path parameters do not explode label cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			metrics.RecordHTTPRequest(c.Request().Method, path, c.Response().Status, time.Since(start))

			return err
		}
	}
}
