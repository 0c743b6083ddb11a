package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Limiter is the subset of the Redis rate limiter the middleware needs.
type Limiter interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// RateLimit enforces a per-occupant request limit on the wrapped routes.
// Limiter failures fail open: a Redis outage must not take QR issuance down
// with it.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, _ := c.Get("occupant_id").(string)
			if subject == "" {
				subject = c.RealIP()
			}

			ok, err := limiter.Allow(c.Request().Context(), subject)
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
