// Package session issues and reads the auth_token credential that
// identifies the caller across requests.
//
// Two codecs exist.  MockCodec reproduces the demo wire format: base64 of
// {"userId": "..."} with no signature and no expiry.  Anyone who can build
// that string can act as any user, so it must never be treated as a
// security boundary.  JWTCodec issues HS256 tokens with an expiry and a
// server-side revocation list and is the default.
package session

import (
	"context"
	"errors"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "auth_token"

// DefaultTTL is the session lifetime and the cookie Max-Age.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned for malformed, forged, expired or revoked tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Token is an issued credential and the time the client should drop it.
type Token struct {
	Value   string
	Expires time.Time
}

// Codec turns user ids into tokens and back.
type Codec interface {
	Issue(ctx context.Context, userID string) (Token, error)
	// Parse returns the user id carried by value or ErrInvalidToken.
	Parse(ctx context.Context, value string) (string, error)
	// Revoke makes value unusable before its natural expiry when the codec
	// supports it.
	Revoke(ctx context.Context, value string) error
}
