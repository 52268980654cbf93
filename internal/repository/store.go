package repository

import (
	"context"

	"github.com/iliyamo/history-museum/internal/model"
)

// FavoriteKind selects which favorites set an operation applies to.
type FavoriteKind string

const (
	FavoriteHall    FavoriteKind = "hall"
	FavoriteExhibit FavoriteKind = "exhibit"
)

// UserPatch carries a partial profile update.  Nil fields keep their
// current value.
type UserPatch struct {
	Email      *string
	FirstName  *string
	LastName   *string
	Patronymic *string
}

// AccountStore persists users and favorites.  Implementations must make
// email uniqueness checks and favorite toggles atomic with respect to
// concurrent callers.
type AccountStore interface {
	// CreateUser inserts u and an empty favorites entry.  It fails with
	// ErrEmailExists when the email is taken.
	CreateUser(ctx context.Context, u model.User) error
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	// UpdateUser applies patch to the user with the given id and returns
	// the stored result.
	UpdateUser(ctx context.Context, id string, patch UserPatch) (model.User, error)
	Favorites(ctx context.Context, userID string) (model.Favorites, error)
	// ToggleFavorite flips membership of itemID and reports the new state.
	ToggleFavorite(ctx context.Context, userID string, kind FavoriteKind, itemID string) (bool, error)
}

func applyPatch(u model.User, p UserPatch) model.User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Patronymic != nil {
		u.Patronymic = *p.Patronymic
	}
	return u
}

var (
	_ AccountStore = (*MemoryStore)(nil)
	_ AccountStore = (*SQLStore)(nil)
)
