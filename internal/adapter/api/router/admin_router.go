package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
)

func SetupAdminRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	adminHandler := handler.GetAdminHandler()
	complaintHandler := handler.GetComplaintHandler()

	// Admin routes - require authentication and admin role
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.AdminOnly())

	admin.GET("/stats", adminHandler.GetDashboardStats)
	admin.GET("/complaints", adminHandler.ListComplaints)
	admin.PUT("/complaints/:complaintId/status", complaintHandler.TransitionStatus)
	admin.PUT("/complaints/:complaintId/assign", complaintHandler.AssignComplaint)
}
