package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
	"github.com/malo-app/malo-web/internal/session"
)

// Page is the data every template receives.  Data holds the page specific
// view model.
type Page struct {
	Title   string
	Admin   bool
	Account *model.Account
	Notices []portal.Notice
	CSRF    string
	Data    any
}

// Base bundles what every page handler needs.
type Base struct {
	API      *apiclient.Client
	Sessions *session.Manager
}

// sessionExpiredKey marks a request whose upstream call answered 401.
const sessionExpiredKey = "session_expired"

// render writes a full page.  Queued notices from the session come first,
// followed by the ones passed in.  When an upstream call of this request
// was refused as unauthorized, the session is ended instead and the
// browser sent to the portal's login page with the notices.
func (b *Base) render(c echo.Context, status int, name, title string, data any, notices ...portal.Notice) error {
	if expired, _ := c.Get(sessionExpiredKey).(bool); expired {
		return b.signOut(c, notices...)
	}
	p := Page{
		Title: title,
		Admin: strings.HasPrefix(c.Request().URL.Path, "/admin"),
		Data:  data,
	}
	if acc, ok := middleware.Account(c); ok {
		p.Account = &acc
	}
	if tok, ok := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string); ok {
		p.CSRF = tok
	}
	flashes, err := b.Sessions.Flashes(c.Response(), c.Request())
	if err != nil {
		logger.FromContext(c.Request().Context()).WithError(err).Warn("reading notices failed")
	}
	for _, f := range flashes {
		p.Notices = append(p.Notices, portal.DecodeNotice(f))
	}
	p.Notices = append(p.Notices, notices...)
	return c.Render(status, name, p)
}

// redirect queues n for the next page and sends the browser to path.
func (b *Base) redirect(c echo.Context, path string, n portal.Notice) error {
	if expired, _ := c.Get(sessionExpiredKey).(bool); expired {
		return b.signOut(c, n)
	}
	if err := b.Sessions.AddFlash(c.Response(), c.Request(), n.Encode()); err != nil {
		logger.FromContext(c.Request().Context()).WithError(err).Warn("notice not saved")
	}
	return c.Redirect(http.StatusSeeOther, path)
}

func (b *Base) signOut(c echo.Context, notices ...portal.Notice) error {
	if err := b.Sessions.Logout(c.Response(), c.Request()); err != nil {
		return err
	}
	for _, n := range notices {
		if err := b.Sessions.AddFlash(c.Response(), c.Request(), n.Encode()); err != nil {
			logger.FromContext(c.Request().Context()).WithError(err).Warn("notice not saved")
		}
	}
	login := middleware.ResidentGate.LoginPath
	if strings.HasPrefix(c.Request().URL.Path, "/admin") {
		login = middleware.AdminGate.LoginPath
	}
	return c.Redirect(http.StatusSeeOther, login)
}

// failed logs an upstream error and turns it into a notice.  A 401 for a
// signed-in account marks the request so that the next render or redirect
// ends the session.
func failed(c echo.Context, op string, err error) portal.Notice {
	rlog := logger.FromContext(c.Request().Context()).WithError(err).WithField("op", op)
	if _, signedIn := middleware.Account(c); signedIn && apiclient.IsUnauthorized(err) {
		c.Set(sessionExpiredKey, true)
	}
	if apiclient.KindOf(err) == apiclient.KindNetwork {
		rlog.Warn("upstream call failed")
	} else {
		rlog.Info("upstream call rejected")
	}
	return portal.FromError(err)
}

// current returns the signed-in account.  Routes using it sit behind
// middleware.RequireRole, so the zero value only shows up in tests.
func current(c echo.Context) model.Account {
	acc, _ := middleware.Account(c)
	return acc
}
