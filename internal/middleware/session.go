package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/session"
)

// accountKey is the echo context key holding the signed-in model.Account.
const accountKey = "account"

// LoadSession reads the stored account for the request and places the raw
// blob in the request context, where the API client picks up the bearer
// token.  A store failure is logged and the request continues signed out.
func LoadSession(mgr *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			raw, err := mgr.Load(r)
			if err != nil {
				logger.FromContext(r.Context()).WithError(err).Warn("session unavailable")
				raw = nil
			}
			ctx := session.WithRaw(r.Context(), raw)
			if acc, ok := session.AccountFromContext(ctx); ok {
				ctx, _ = logger.ContextWithIdentity(ctx, identity(acc.Email, acc.Token, acc.ID.String()))
				c.Set(accountKey, acc)
			}
			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}
}

// identity picks the first usable name for log lines: the email, the
// token subject, then the account id.
func identity(email, token, id string) string {
	if email != "" {
		return email
	}
	if sub := session.TokenSubject(token); sub != "" {
		return sub
	}
	if id != "" {
		return id
	}
	return "guest"
}
