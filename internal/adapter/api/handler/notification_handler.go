package handler

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/usecase"
	"grievance/pkg/response"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) ListUnread(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	notifications, err := h.notificationUseCase.ListUnread(c.Request().Context(), identity.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notifications)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	n, err := h.notificationUseCase.MarkRead(c.Request().Context(), c.Param("id"), identity.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, n)
}
