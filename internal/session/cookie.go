package session

import (
	"net/http"
	"strings"
	"time"
)

// NewCookie builds the Set-Cookie value for an issued token: HttpOnly,
// SameSite=Lax, Secure when secure is true, Max-Age matching the token.
func NewCookie(t Token, secure bool, now time.Time) *http.Cookie {
	maxAge := int(t.Expires.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = int(DefaultTTL.Seconds())
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    t.Value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  t.Expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie deletes the session cookie on the client.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest returns the raw token carried by r: the auth_token cookie, or
// a Bearer Authorization header for non-browser clients.
func FromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
