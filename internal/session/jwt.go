package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTCodec issues HS256 tokens carrying sub (user id), jti, iat and exp.
// Revoked token ids are kept in Revocations until the token would have
// expired anyway.
type JWTCodec struct {
	Secret      []byte
	TTL         time.Duration
	Revocations Revocations
	Now         func() time.Time
}

func NewJWTCodec(secret string, ttl time.Duration, rev Revocations) *JWTCodec {
	return &JWTCodec{Secret: []byte(secret), TTL: ttl, Revocations: rev}
}

func (j *JWTCodec) Issue(_ context.Context, userID string) (Token, error) {
	issued := now(j.Now)
	exp := issued.Add(ttlOrDefault(j.TTL))
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Expires: exp}, nil
}

func (j *JWTCodec) Parse(ctx context.Context, value string) (string, error) {
	claims, err := j.claims(value)
	if err != nil {
		return "", err
	}
	if j.Revocations != nil {
		revoked, err := j.Revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", err
		}
		if revoked {
			return "", ErrInvalidToken
		}
	}
	return claims.Subject, nil
}

// Revoke records the token id so later Parse calls reject it.  Tokens that
// are already invalid need no revocation and are ignored.
func (j *JWTCodec) Revoke(ctx context.Context, value string) error {
	if j.Revocations == nil {
		return nil
	}
	claims, err := j.claims(value)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}
	return j.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (j *JWTCodec) claims(value string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if j.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(j.Now))
	}
	tok, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.Secret, nil
	}, opts...)
	if err != nil || !tok.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
