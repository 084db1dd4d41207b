package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grievance/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	if healthHandler != nil {
		e.GET("/health", healthHandler.CheckHealth)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
