package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/handler"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/session"
)

// AdminHandlers are the handlers behind the admin portal.
type AdminHandlers struct {
	Auth      *handler.AuthHandler
	Admin     *handler.AdminHandler
	Residents *handler.Roster[model.Resident]
	Staff     *handler.Roster[model.Staff]
	Profile   *handler.ProfileHandler
}

// RegisterAdmin registers the managing staff pages under /admin.  All of
// them require a managing staff session; everything except onboarding
// also requires a finished onboarding.
func RegisterAdmin(e *echo.Echo, mgr *session.Manager, h AdminHandlers) {
	gate := middleware.RequireRole(mgr, middleware.AdminGate)

	e.GET("/admin", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/admin/dashboard") })
	e.GET("/admin/onboarding", h.Auth.AdminOnboardingPage, gate)
	e.POST("/admin/onboarding", h.Auth.AdminOnboarding, gate)

	g := e.Group("/admin", gate, middleware.RequireOnboarded(middleware.AdminGate))
	g.GET("/dashboard", h.Admin.Dashboard)
	g.GET("/reports", h.Admin.Reports)
	g.GET("/profile", h.Profile.Show)
	g.POST("/profile", h.Profile.Save)

	g.GET("/residents/:username/visits", h.Admin.ResidentVisits)
	registerRoster(g.Group("/residents"), h.Residents)
	registerRoster(g.Group("/staff"), h.Staff)
}

// roster is the route surface shared by residents and staff.
type roster interface {
	List(echo.Context) error
	New(echo.Context) error
	Create(echo.Context) error
	Edit(echo.Context) error
	Update(echo.Context) error
	ConfirmDelete(echo.Context) error
	Delete(echo.Context) error
	Approve(echo.Context) error
}

func registerRoster(g *echo.Group, r roster) {
	g.GET("", r.List)
	g.POST("", r.Create)
	g.GET("/new", r.New)
	g.GET("/:username/edit", r.Edit)
	g.POST("/:username", r.Update)
	g.GET("/:username/delete", r.ConfirmDelete)
	g.POST("/:username/delete", r.Delete)
	g.POST("/:username/approve", r.Approve)
}
