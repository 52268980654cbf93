package middleware

// identity.go holds the caller identification shared by the cache and rate
// limit middleware.

import "github.com/labstack/echo/v4"

// userID returns the id of the signed-in user, or "anon" for anonymous
// callers.  It relies on Session having run earlier in the chain.
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
