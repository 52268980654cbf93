package utils

import "github.com/google/uuid"

// NewID returns a random identifier for newly created records.
func NewID() string { return uuid.NewString() }
