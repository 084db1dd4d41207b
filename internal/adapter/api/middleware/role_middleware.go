package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"grievance/internal/domain/entity"
)

// RequireRoles lets the request through only when the authenticated caller
// holds one of roles. It must run after Authenticate.
func RequireRoles(roles ...entity.Role) echo.MiddlewareFunc {
	allowed := make(map[entity.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := Identity(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			if !allowed[identity.Role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient privileges")
			}

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return RequireRoles(entity.RoleAdmin)
}

func StaffOnly() echo.MiddlewareFunc {
	return RequireRoles(entity.RoleDepartmentStaff, entity.RoleDepartmentHead, entity.RoleAdmin)
}
