package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token is a JWT whose "exp" lies before now.
// The signature is not checked; the upstream API remains the authority and
// this only avoids keeping a session that can no longer be used.  Opaque
// tokens and tokens without "exp" never expire here.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	tok, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

// TokenSubject returns the "sub" claim of a JWT, or "" for opaque tokens.
func TokenSubject(token string) string {
	tok, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, _ := tok.Claims.GetSubject()
	return sub
}
