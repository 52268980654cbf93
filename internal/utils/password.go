package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// MaxPasswordBytes is bcrypt's input limit.  Counted in bytes, so a
// Cyrillic password hits it at 36 characters.
const MaxPasswordBytes = 72

// HashPassword returns bcrypt hash using the given cost.  Costs outside
// bcrypt's accepted range fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
