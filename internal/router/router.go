package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/handler"
	"github.com/lumichat/auth-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; the session gate guards /v1/me.  sendLimit
// is the per-IP limiter tier on send-code, layered in front of the per-phone
// issuance cap the service enforces.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate, sendLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/send-code", a.SendCode, sendLimit)
	g.POST("/login-with-code", a.LoginWithCode)
	g.POST("/login-with-password", a.LoginWithPassword)
	g.POST("/set-password", a.SetPassword)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(gate)
	auth.GET("/me", a.Me)
}

// RegisterAdmin registers the user administration endpoints.  Each route
// carries the session gate plus a role gate; the service re-validates the
// self-action rules underneath.
func RegisterAdmin(e *echo.Echo, h *handler.UserAdminHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/v1/admin/users")
	g.Use(gate)
	g.PUT("/:id/role", h.ChangeRole, middleware.RequireAdmin())
	g.PUT("/:id/suspend", h.Suspend, middleware.RequireModerator())
	g.PUT("/:id/unsuspend", h.Unsuspend, middleware.RequireModerator())
	g.DELETE("/:id", h.Delete, middleware.RequireAdmin())
}

// RegisterChat registers the chat completion proxy behind the session gate
// and the per-user rate limiter tiers.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler, gate, limit echo.MiddlewareFunc) {
	e.POST("/v1/chat/completions", h.Complete, gate, limit)
}
