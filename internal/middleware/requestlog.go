package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/malo-app/malo-web/internal/logger"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestLogger puts a request-scoped logger into the context and logs one
// line per request once the response is written.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			r := c.Request()
			ctx, _ := logger.ContextWithLogger(r.Context(), r.Header.Get(RequestIDHeader))
			c.SetRequest(r.WithContext(ctx))
			c.Response().Header().Set(RequestIDHeader, logger.RequestIDFromContext(ctx))

			if err := next(c); err != nil {
				c.Error(err)
			}

			// the session middleware may have tagged the logger with an identity
			rlog := logger.FromContext(c.Request().Context())
			status := c.Response().Status
			entry := rlog.WithFields(logrus.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  status,
				"latency": time.Since(start).String(),
			})
			switch {
			case status >= 500:
				entry.Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}
