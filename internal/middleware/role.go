package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
	"github.com/malo-app/malo-web/internal/session"
)

// Gate describes who may enter a portal and where everyone else is sent.
type Gate struct {
	LoginPath      string
	OnboardingPath string
	Allows         func(model.Account) bool
	Denied         string
}

// AdminGate admits managing staff only.
var AdminGate = Gate{
	LoginPath:      "/admin/login",
	OnboardingPath: "/admin/onboarding",
	Allows:         model.Account.IsManager,
	Denied:         "Access denied. This portal is for managing staff only.",
}

// ResidentGate admits residents only.
var ResidentGate = Gate{
	LoginPath:      "/login",
	OnboardingPath: "/onboarding",
	Allows:         model.Account.IsResident,
	Denied:         "Access denied. Please use the admin portal.",
}

// RequireRole sends visitors without a session to the gate's login page and
// signed-in accounts of the other portal to their own home with a notice.
func RequireRole(mgr *session.Manager, g Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acc, ok := Account(c)
			if !ok {
				return c.Redirect(http.StatusSeeOther, g.LoginPath)
			}
			if !g.Allows(acc) {
				notice := portal.Notice{Level: portal.LevelError, Kind: "rejected", Message: g.Denied}
				if err := mgr.AddFlash(c.Response(), c.Request(), notice.Encode()); err != nil {
					logger.FromContext(c.Request().Context()).WithError(err).Warn("flash not saved")
				}
				return c.Redirect(http.StatusSeeOther, acc.HomePath())
			}
			return next(c)
		}
	}
}

// RequireOnboarded keeps accounts that have not finished onboarding on the
// onboarding page.  It runs after RequireRole.
func RequireOnboarded(g Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if acc, ok := Account(c); ok && !acc.IsOnboarded {
				return c.Redirect(http.StatusSeeOther, g.OnboardingPath)
			}
			return next(c)
		}
	}
}

// Account returns the account LoadSession found for this request.
func Account(c echo.Context) (model.Account, bool) {
	acc, ok := c.Get(accountKey).(model.Account)
	return acc, ok
}
