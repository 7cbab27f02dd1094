package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"RiskRegime/pkg/logger"
)

// RequestLogging logs one line per request. Requests slower than slow are logged as warnings.
func RequestLogging(l *logger.Logger, slow time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			latency := time.Since(start)
			fields := []logger.Field{
				logger.String("method", c.Request().Method),
				logger.String("route", routeLabel(c)),
				logger.Int("status", c.Response().Status),
				logger.Duration("duration_ms", latency),
				logger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			}
			switch {
			case c.Response().Status >= 500:
				l.Error("http request failed", fields...)
			case slow > 0 && latency >= slow:
				l.Warn("http request slow", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
