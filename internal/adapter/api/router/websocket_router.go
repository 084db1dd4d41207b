package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up the notification push endpoint. Browsers pass
// the token as a query parameter.
func SetupWebSocketRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware, wsHandler *handler.WebSocketHandler) {
	v1.GET("/ws", wsHandler.HandleWebSocket, authMiddleware.Authenticate)
}
