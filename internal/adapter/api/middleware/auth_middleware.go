package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"grievance/internal/domain/entity"
	"grievance/internal/usecase"
	"grievance/pkg/logger"
)

const (
	ContextUserID = "uid"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	verifier usecase.TokenVerifier
}

func NewAuthMiddleware(verifier usecase.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate verifies the bearer token and stores the caller's id and role
// on the context. Websocket clients cannot set headers, so a token query
// parameter is accepted when the header is absent.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var token string

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
			}
			token = parts[1]
		} else {
			token = c.QueryParam("token")
		}

		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		identity, err := m.verifier.Verify(c.Request().Context(), token)
		if err != nil {
			logger.Debug("Token verification failed: %v", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextRole, identity.Role)

		return next(c)
	}
}

// Identity reads what Authenticate stored.
func Identity(c echo.Context) (entity.Identity, bool) {
	uid, ok := c.Get(ContextUserID).(string)
	if !ok || uid == "" {
		return entity.Identity{}, false
	}
	role, _ := c.Get(ContextRole).(entity.Role)
	return entity.Identity{UserID: uid, Role: role}, true
}
