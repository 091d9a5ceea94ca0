package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/portal"
)

// ErrorHandler renders the error page for anything a handler returned
// instead of rendering itself.
func ErrorHandler(b *Base) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Something went wrong. Please try again."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < http.StatusInternalServerError {
				msg = fmt.Sprint(he.Message)
			}
		}
		rlog := logger.FromContext(c.Request().Context()).WithError(err).WithField("status", code)
		if code >= http.StatusInternalServerError {
			rlog.Error("request failed")
		} else {
			rlog.Debug("request refused")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		n := portal.Notice{Level: portal.LevelError, Message: msg}
		if rerr := b.render(c, code, "error", http.StatusText(code), code, n); rerr != nil {
			rlog.WithError(rerr).Error("error page failed")
			_ = c.String(code, msg)
		}
	}
}
