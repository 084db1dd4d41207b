package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
)

func SetupDepartmentRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	departmentHandler := handler.GetDepartmentHandler()

	// Public: the registration and complaint forms list departments.
	v1.GET("/departments", departmentHandler.ListDepartments)

	department := v1.Group("/department")
	department.Use(authMiddleware.Authenticate)
	department.Use(middleware.StaffOnly())

	department.GET("/dashboard", departmentHandler.GetDashboard)
}
