package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

type mockPayload struct {
	UserID string `json:"userId"`
}

// MockCodec encodes the user id as base64 JSON.  NOT SECURE: tokens are
// neither signed nor expiring, and Revoke cannot invalidate them.
type MockCodec struct {
	TTL time.Duration // cookie Max-Age hint only
	Now func() time.Time
}

func (m MockCodec) Issue(_ context.Context, userID string) (Token, error) {
	raw, err := json.Marshal(mockPayload{UserID: userID})
	if err != nil {
		return Token{}, err
	}
	return Token{
		Value:   base64.StdEncoding.EncodeToString(raw),
		Expires: now(m.Now).Add(ttlOrDefault(m.TTL)),
	}, nil
}

// Parse accepts padded or unpadded, standard or URL-safe base64 so tokens
// built by hand or by other clients decode the same way.
func (m MockCodec) Parse(_ context.Context, value string) (string, error) {
	raw, ok := decodeBase64(strings.TrimSpace(value))
	if !ok {
		return "", ErrInvalidToken
	}
	var p mockPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
		return "", ErrInvalidToken
	}
	return p.UserID, nil
}

// Revoke is a no-op: without a server-side session table a mock token stays
// valid for as long as the client keeps presenting it.
func (m MockCodec) Revoke(context.Context, string) error { return nil }

var mockEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

func decodeBase64(s string) ([]byte, bool) {
	for _, enc := range mockEncodings {
		if raw, err := enc.DecodeString(s); err == nil {
			return raw, true
		}
	}
	return nil, false
}

func now(f func() time.Time) time.Time {
	if f != nil {
		return f().UTC()
	}
	return time.Now().UTC()
}

func ttlOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTTL
	}
	return d
}
