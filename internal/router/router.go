// Package router registers the routes of both portals on an Echo instance.
package router

import (
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/handler"
	"github.com/malo-app/malo-web/internal/middleware"
)

// RegisterRoutes registers the health check and static assets.  Neither
// needs a session.
func RegisterRoutes(e *echo.Echo, static fs.FS) {
	e.GET("/healthz", handler.Health)
	e.StaticFS("/static", static)
}

// RegisterAuth registers sign-in, registration and sign-out for both
// portals.  limit guards every route that submits credentials.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	e.GET("/login", a.LoginPage(middleware.ResidentGate))
	e.POST("/login", a.Login(middleware.ResidentGate), limit)
	e.POST("/auth/google", a.Google(middleware.ResidentGate), limit)
	e.POST("/logout", a.Logout(middleware.ResidentGate))

	e.GET("/admin/login", a.LoginPage(middleware.AdminGate))
	e.POST("/admin/login", a.Login(middleware.AdminGate), limit)
	e.POST("/admin/auth/google", a.Google(middleware.AdminGate), limit)
	e.GET("/admin/register", a.RegisterPage)
	e.POST("/admin/register", a.Register, limit)
	e.POST("/admin/logout", a.Logout(middleware.AdminGate))
}
