package middleware // middleware contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/service"
	"github.com/lumichat/auth-service/internal/token"
)

// Identity is the authenticated caller attached to the request context.  It
// is loaded from the database on every request, never from token claims
// alone, so suspension and role changes gate the very next call.
type Identity struct {
	ID          uint64
	Phone       string
	Email       string
	Name        string
	Role        model.Role
	IsSuspended bool
}

const identityKey = "identity"

// CurrentIdentity returns the identity placed by Authenticate, or nil when
// the route is not gated.
func CurrentIdentity(c echo.Context) *Identity {
	id, _ := c.Get(identityKey).(*Identity)
	return id
}

// Authenticate returns the session gate middleware.  It validates the
// Bearer access token, loads the user from storage, rejects suspended
// accounts with 403 and attaches the identity for downstream authorization.
//
// When bypass is true the gate injects a fixed admin identity without any
// credential check.  That flag is for local development only; config refuses
// it in prod at startup, and this middleware is the reason why.
func Authenticate(issuer *token.Issuer, users service.UserStore, bypass bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if bypass {
				c.Set(identityKey, &Identity{ID: 1, Phone: "13800000000", Name: "dev-admin", Role: model.RoleAdmin})
				return next(c)
			}

			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := issuer.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			sub, _ := claims["sub"].(string)
			uid, err := strconv.ParseUint(sub, 10, 64)
			if err != nil || uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Fresh DB read per request: suspension and role must not be
			// trusted from the token, which may have been minted before a
			// security action.
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if u.IsSuspended {
				return c.JSON(http.StatusForbidden, echo.Map{"error": service.ErrSuspended.Error()})
			}

			ident := &Identity{ID: u.ID, Phone: u.Phone, Role: u.Role, IsSuspended: u.IsSuspended}
			if u.Email != nil {
				ident.Email = *u.Email
			}
			if u.Name != nil {
				ident.Name = *u.Name
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}
