package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
)

func SetupNotificationRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	notificationHandler := handler.GetNotificationHandler()

	notifications := v1.Group("/notifications")
	notifications.Use(authMiddleware.Authenticate)

	notifications.GET("", notificationHandler.ListUnread)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
}
