package handler

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/domain/entity"
	"grievance/internal/usecase"
	"grievance/pkg/response"
)

type DepartmentHandler struct {
	complaintUseCase *usecase.ComplaintUseCase
}

func NewDepartmentHandler(complaintUseCase *usecase.ComplaintUseCase) *DepartmentHandler {
	return &DepartmentHandler{
		complaintUseCase: complaintUseCase,
	}
}

func (h *DepartmentHandler) ListDepartments(c echo.Context) error {
	return response.Success(c, h.complaintUseCase.Departments())
}

// GetDashboard serves the staff dashboard. Admins pick the department with
// the department query parameter.
func (h *DepartmentHandler) GetDashboard(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	dashboard, err := h.complaintUseCase.GetDepartmentDashboard(
		c.Request().Context(),
		identity,
		entity.DepartmentID(c.QueryParam("department")),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dashboard)
}
