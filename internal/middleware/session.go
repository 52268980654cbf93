package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/history-museum/internal/model"
	"github.com/iliyamo/history-museum/internal/service"
	"github.com/iliyamo/history-museum/internal/session"
)

// Context keys set by Session.
const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxToken  = "session_token"
)

// MsgUnauthenticated is the localized "not signed in" message.
const MsgUnauthenticated = "Не авторизован"

// Session reads the auth_token cookie (or a Bearer header), resolves it to a
// user and stores both in the context.  It never rejects a request: an
// absent or broken token simply leaves the caller anonymous.
func Session(accounts *service.Accounts) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := session.FromRequest(c.Request())
			if raw != "" {
				c.Set(ctxToken, raw)
				if u, ok := accounts.CurrentUser(c.Request().Context(), raw); ok {
					c.Set(ctxUser, u)
					c.Set(ctxUserID, u.ID)
				}
			}
			return next(c)
		}
	}
}

// RequireUser aborts with 401 unless Session found a signed-in user.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": MsgUnauthenticated})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by Session.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}

// SessionToken returns the raw token presented with the request, if any.
func SessionToken(c echo.Context) string {
	s, _ := c.Get(ctxToken).(string)
	return s
}
