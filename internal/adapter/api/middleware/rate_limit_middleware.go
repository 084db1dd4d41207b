package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"grievance/internal/infrastructure/ratelimit"
	"grievance/pkg/errors"
	"grievance/pkg/logger"
	"grievance/pkg/response"
)

// RateLimit throttles requests per client IP. scope separates independent
// budgets, e.g. the auth endpoints from the rest of the API.
func RateLimit(limiter *ratelimit.RateLimiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, wait := limiter.Allow(scope + ":" + ip)
			if !allowed {
				logger.Warn("Rate limit exceeded for %s on %s", ip, scope)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded, please try again later"))
			}

			return next(c)
		}
	}
}
