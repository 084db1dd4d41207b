package router

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/handler"
	"grievance/internal/adapter/api/middleware"
)

func SetupComplaintRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	complaintHandler := handler.GetComplaintHandler()

	complaints := v1.Group("/complaints")
	complaints.Use(authMiddleware.Authenticate)

	complaints.POST("", complaintHandler.CreateComplaint)
	complaints.GET("", complaintHandler.ListComplaints)
	complaints.GET("/:complaintId", complaintHandler.GetComplaint)

	// Staff transitions are scoped to the caller's department in the use case.
	staff := v1.Group("/staff/complaints")
	staff.Use(authMiddleware.Authenticate)
	staff.Use(middleware.StaffOnly())

	staff.PUT("/:complaintId/status", complaintHandler.TransitionStatus)
}
