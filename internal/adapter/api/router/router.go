package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
	"grievance/internal/infrastructure/ratelimit"
)

// Options carries what the route groups need beyond the handler registry.
type Options struct {
	AuthMiddleware *middleware.AuthMiddleware
	APILimiter     *ratelimit.RateLimiter
	AuthLimiter    *ratelimit.RateLimiter
	// PasswordAuth mounts register/login; an external identity provider
	// handles those otherwise.
	PasswordAuth bool
	WSHandler    *handler.WebSocketHandler
	// UploadDir is served under /uploads when attachments are kept on disk.
	UploadDir string
}

func Setup(e *echo.Echo, opts Options) {
	SetupHealthRouter(e)

	v1 := e.Group("/v1")
	if opts.APILimiter != nil {
		v1.Use(middleware.RateLimit(opts.APILimiter, "api"))
	}

	SetupAuthRouter(v1, opts.AuthMiddleware, opts.AuthLimiter, opts.PasswordAuth)
	SetupComplaintRouter(v1, opts.AuthMiddleware)
	SetupNotificationRouter(v1, opts.AuthMiddleware)
	SetupDepartmentRouter(v1, opts.AuthMiddleware)
	SetupAdminRouter(v1, opts.AuthMiddleware)

	if opts.WSHandler != nil {
		SetupWebSocketRouter(v1, opts.AuthMiddleware, opts.WSHandler)
	}

	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}
}
