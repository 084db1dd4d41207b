package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
	"grievance/internal/infrastructure/ratelimit"
)

// SetupAuthRouter initializes auth routes. Register, login and password
// changes exist only when the API issues its own tokens.
func SetupAuthRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter, passwordAuth bool) {
	authHandler := handler.GetAuthHandler()

	var throttle []echo.MiddlewareFunc
	if limiter != nil {
		throttle = append(throttle, middleware.RateLimit(limiter, "auth"))
	}

	auth := v1.Group("/auth")

	if passwordAuth {
		auth.POST("/register", authHandler.Register, throttle...)
		auth.POST("/login", authHandler.Login, throttle...)
		auth.POST("/change-password", authHandler.ChangePassword, authMiddleware.Authenticate)
	}

	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate)
}
