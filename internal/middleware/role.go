package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/model"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the given roles.  It assumes Authenticate
// already attached the identity.  The 403 body names the acceptable roles;
// the set is not a secret and the list makes client-side debugging easier.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = true
		names = append(names, string(r))
	}
	msg := "requires one of: " + strings.Join(names, ", ")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := CurrentIdentity(c)
			if ident == nil || !allowed[ident.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
			}
			return next(c)
		}
	}
}

// RequireAdmin gates a route to ADMIN accounts.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }

// RequireModerator gates a route to MODERATOR and ADMIN accounts.
func RequireModerator() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin, model.RoleModerator)
}
