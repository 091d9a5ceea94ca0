package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/handler"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/session"
)

// ResidentHandlers are the handlers behind the resident portal.
type ResidentHandlers struct {
	Auth     *handler.AuthHandler
	Resident *handler.ResidentHandler
	Profile  *handler.ProfileHandler
}

// RegisterResident registers the resident pages at the root.  Managing
// staff are turned away to the admin portal.
func RegisterResident(e *echo.Echo, mgr *session.Manager, h ResidentHandlers) {
	gate := middleware.RequireRole(mgr, middleware.ResidentGate)

	e.GET("/", func(c echo.Context) error {
		if acc, ok := middleware.Account(c); ok {
			return c.Redirect(http.StatusSeeOther, acc.HomePath())
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	})
	e.GET("/onboarding", h.Auth.OnboardingPage, gate)
	e.POST("/onboarding", h.Auth.Onboarding, gate)

	// no root group here: a group's catch-all would gate unknown paths too
	mw := []echo.MiddlewareFunc{gate, middleware.RequireOnboarded(middleware.ResidentGate)}
	e.GET("/dashboard", h.Resident.Dashboard, mw...)
	e.GET("/visits", h.Resident.History, mw...)
	e.GET("/visits/new", h.Resident.NewVisit, mw...)
	e.POST("/visits/new", h.Resident.RequestVisit, mw...)
	e.GET("/profile", h.Profile.Show, mw...)
	e.POST("/profile", h.Profile.Save, mw...)
}
