// Package repository defines the account storage layer: users and their
// favorites.  The sentinel errors below are shared by every store
// implementation so higher layers such as the account service can
// distinguish failure scenarios with errors.Is.
package repository

import "errors"

// ErrEmailExists is returned when a user is created or updated with an
// email that already belongs to another user.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")
