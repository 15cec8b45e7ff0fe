package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motoshop/auth-service/internal/model"
)

// The role gates assume Authenticate already ran: a request with no
// identity in context answers 401, a present identity with an insufficient
// role answers 403.  Each gate switches exhaustively over the closed role
// set so a new role must be placed on one side or the other to compile
// meaningfully.

// RequireAdmin admits only administrators.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Identity(c)
			if !ok {
				return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "user not authenticated")
			}
			switch p.Role {
			case model.RoleAdmin:
				return next(c)
			case model.RoleManager, model.RoleOperator, model.RoleMechanic:
				return errorJSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
			}
			return errorJSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
		}
	}
}

// RequireManager admits administrators and managers.
func RequireManager() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Identity(c)
			if !ok {
				return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "user not authenticated")
			}
			switch p.Role {
			case model.RoleAdmin, model.RoleManager:
				return next(c)
			case model.RoleOperator, model.RoleMechanic:
				return errorJSON(c, http.StatusForbidden, "FORBIDDEN", "admin or manager access required")
			}
			return errorJSON(c, http.StatusForbidden, "FORBIDDEN", "admin or manager access required")
		}
	}
}
