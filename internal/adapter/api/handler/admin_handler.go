package handler

import (
	"github.com/labstack/echo/v4"

	"grievance/internal/usecase"
	"grievance/pkg/response"
	"grievance/pkg/utils"
)

type AdminHandler struct {
	complaintUseCase *usecase.ComplaintUseCase
}

func NewAdminHandler(complaintUseCase *usecase.ComplaintUseCase) *AdminHandler {
	return &AdminHandler{
		complaintUseCase: complaintUseCase,
	}
}

func (h *AdminHandler) GetDashboardStats(c echo.Context) error {
	snapshot, err := h.complaintUseCase.GetOverviewStatistics(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, snapshot)
}

// ListComplaints pages across every department and attaches per-department
// counts for the same filter, used for the department tabs.
func (h *AdminHandler) ListComplaints(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	filter, err := parseComplaintFilter(c)
	if err != nil {
		return response.Error(c, err)
	}
	params := utils.GetPaginationParams(c)
	ctx := c.Request().Context()

	result, err := h.complaintUseCase.ListComplaints(ctx, filter, identity, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	tabFilter := filter
	tabFilter.Departments = nil
	counts, err := h.complaintUseCase.CountPerDepartment(ctx, tabFilter)
	if err != nil {
		return response.Error(c, err)
	}

	return response.PaginatedWithExtra(c, result.Items, result.Total, params.Page, params.PageSize, map[string]interface{}{
		"department_counts": counts,
	})
}
