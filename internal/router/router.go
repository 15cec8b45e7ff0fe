// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/motoshop/auth-service/internal/handler"
	"github.com/motoshop/auth-service/internal/middleware"
)

// Register mounts every route of the service.  loginLimit is the rate
// limiter applied to the login endpoint only; pass the no-op limiter when
// Redis is not configured.
func Register(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, loginLimit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Credential exchange; reachable without a session.
	authGroup := api.Group("/auth")
	authGroup.POST("/login", a.Login, loginLimit)
	authGroup.POST("/refresh", a.Refresh)
	authGroup.POST("/verify", a.Verify)
	authGroup.POST("/logout", a.Logout)

	// Endpoints that act on the authenticated caller.
	session := api.Group("/auth", middleware.Authenticate(a.Svc))
	session.POST("/change-password", a.ChangePassword)
	session.GET("/profile", a.Profile)

	// User management.  Reads are open to managers; mutation is admin-only.
	users := api.Group("/users", middleware.Authenticate(a.Svc))
	users.GET("", u.List, middleware.RequireManager())
	users.GET("/stats", u.Stats, middleware.RequireManager())
	users.GET("/roles", u.Roles, middleware.RequireManager())
	users.GET("/:id", u.Show, middleware.RequireManager())
	users.POST("", u.Create, middleware.RequireAdmin())
	users.PUT("/:id", u.Update, middleware.RequireAdmin())
	users.POST("/:id/deactivate", u.Deactivate, middleware.RequireAdmin())
	users.POST("/:id/activate", u.Activate, middleware.RequireAdmin())
	users.POST("/:id/reset-password", u.ResetPassword, middleware.RequireAdmin())
}
