package handler

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/adapter/api/middleware"
	"grievance/internal/domain/entity"
	"grievance/internal/usecase"
	"grievance/pkg/errors"
)

var (
	authHandler         *AuthHandler
	complaintHandler    *ComplaintHandler
	adminHandler        *AdminHandler
	departmentHandler   *DepartmentHandler
	notificationHandler *NotificationHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	complaintUseCase *usecase.ComplaintUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	upload UploadLimits,
) {
	authHandler = NewAuthHandler(authUseCase)
	complaintHandler = NewComplaintHandler(complaintUseCase, upload)
	adminHandler = NewAdminHandler(complaintUseCase)
	departmentHandler = NewDepartmentHandler(complaintUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetComplaintHandler() *ComplaintHandler {
	return complaintHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetDepartmentHandler() *DepartmentHandler {
	return departmentHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func requireIdentity(c echo.Context) (entity.Identity, error) {
	identity, ok := middleware.Identity(c)
	if !ok {
		return entity.Identity{}, errors.Unauthorized("Authentication required", nil)
	}
	return identity, nil
}
