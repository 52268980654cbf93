// Package service implements the visitor account operations: sign-up,
// sign-in, sign-out, profile updates and favorites.  It sits between the
// HTTP handlers and the account store and owns the session codec.
package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/iliyamo/history-museum/internal/metrics"
	"github.com/iliyamo/history-museum/internal/model"
	"github.com/iliyamo/history-museum/internal/queue"
	"github.com/iliyamo/history-museum/internal/repository"
	"github.com/iliyamo/history-museum/internal/session"
	"github.com/iliyamo/history-museum/internal/utils"
)

var (
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrEmailTaken         = errors.New("email taken")
	ErrInvalidInput       = errors.New("invalid input")
)

// SignUpInput is the sign-up form.  Patronymic is optional.
type SignUpInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Patronymic string
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Email      *string
	FirstName  *string
	LastName   *string
	Patronymic *string
}

// Accounts bundles the dependencies of the account operations.
type Accounts struct {
	Store      repository.AccountStore
	Sessions   session.Codec
	Events     queue.Publisher
	BcryptCost int
	Now        func() time.Time
}

func NewAccounts(store repository.AccountStore, sessions session.Codec, events queue.Publisher, bcryptCost int) *Accounts {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Accounts{Store: store, Sessions: sessions, Events: events, BcryptCost: bcryptCost}
}

// SignUp creates an account with empty favorites and opens a session for it.
func (a *Accounts) SignUp(ctx context.Context, in SignUpInput) (model.User, session.Token, error) {
	if in.Email == "" || in.FirstName == "" || in.LastName == "" ||
		len([]rune(in.Password)) < utils.MinPasswordLength || len(in.Password) > utils.MaxPasswordBytes {
		metrics.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		return model.User{}, session.Token{}, ErrInvalidInput
	}
	hash, err := utils.HashPassword(in.Password, a.BcryptCost)
	if err != nil {
		return model.User{}, session.Token{}, err
	}
	u := model.User{
		ID:           utils.NewID(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Patronymic:   in.Patronymic,
		CreatedAt:    a.now().Format("2006-01-02"),
	}
	// The token is issued first so a codec failure leaves no orphaned account.
	tok, err := a.Sessions.Issue(ctx, u.ID)
	if err != nil {
		return model.User{}, session.Token{}, err
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			metrics.AuthAttempts.WithLabelValues("signup", "duplicate").Inc()
			return model.User{}, session.Token{}, ErrDuplicateEmail
		}
		return model.User{}, session.Token{}, err
	}
	metrics.AuthAttempts.WithLabelValues("signup", "ok").Inc()
	a.publish(queue.ActivityEvent{Type: queue.EventSignedUp, UserID: u.ID, Email: u.Email})
	return u, tok, nil
}

// SignIn checks the credentials and opens a session.  Unknown email and
// wrong password are indistinguishable to the caller.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (model.User, session.Token, error) {
	u, err := a.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues("signin", "invalid").Inc()
			return model.User{}, session.Token{}, ErrInvalidCredentials
		}
		return model.User{}, session.Token{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		metrics.AuthAttempts.WithLabelValues("signin", "invalid").Inc()
		return model.User{}, session.Token{}, ErrInvalidCredentials
	}
	tok, err := a.Sessions.Issue(ctx, u.ID)
	if err != nil {
		return model.User{}, session.Token{}, err
	}
	metrics.AuthAttempts.WithLabelValues("signin", "ok").Inc()
	a.publish(queue.ActivityEvent{Type: queue.EventSignedIn, UserID: u.ID, Email: u.Email})
	return u, tok, nil
}

// CurrentUser resolves the session token.  Any failure, including store
// errors, reads as "no user".
func (a *Accounts) CurrentUser(ctx context.Context, token string) (model.User, bool) {
	if token == "" {
		return model.User{}, false
	}
	id, err := a.Sessions.Parse(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrInvalidToken) {
			log.Printf("accounts: parse session: %v", err)
		}
		return model.User{}, false
	}
	u, err := a.Store.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("accounts: load user %s: %v", id, err)
		}
		return model.User{}, false
	}
	return u, true
}

// SignOut revokes the token where the session codec supports it.
func (a *Accounts) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	u, ok := a.CurrentUser(ctx, token)
	if err := a.Sessions.Revoke(ctx, token); err != nil {
		return err
	}
	if ok {
		a.publish(queue.ActivityEvent{Type: queue.EventSignedOut, UserID: u.ID})
	}
	return nil
}

// UpdateProfile applies a partial update to the signed-in user.
func (a *Accounts) UpdateProfile(ctx context.Context, token string, p ProfilePatch) (model.User, error) {
	u, ok := a.CurrentUser(ctx, token)
	if !ok {
		return model.User{}, ErrUnauthenticated
	}
	for _, v := range []*string{p.Email, p.FirstName, p.LastName} {
		if v != nil && *v == "" {
			return model.User{}, ErrInvalidInput
		}
	}
	updated, err := a.Store.UpdateUser(ctx, u.ID, repository.UserPatch{
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Patronymic: p.Patronymic,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return model.User{}, ErrEmailTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return model.User{}, ErrUnauthenticated
		}
		return model.User{}, err
	}
	a.publish(queue.ActivityEvent{Type: queue.EventProfileUpdated, UserID: u.ID, Email: updated.Email})
	return updated, nil
}

// Favorites returns the signed-in user's favorites.
func (a *Accounts) Favorites(ctx context.Context, token string) (model.Favorites, error) {
	u, ok := a.CurrentUser(ctx, token)
	if !ok {
		return model.Favorites{}, ErrUnauthenticated
	}
	return a.Store.Favorites(ctx, u.ID)
}

// IsHallFavorite reports whether the signed-in user favorited the hall.
// Anonymous callers get false.
func (a *Accounts) IsHallFavorite(ctx context.Context, token, hallID string) bool {
	f, err := a.Favorites(ctx, token)
	return err == nil && f.HasHall(hallID)
}

// IsExhibitFavorite reports whether the signed-in user favorited the exhibit.
func (a *Accounts) IsExhibitFavorite(ctx context.Context, token, exhibitID string) bool {
	f, err := a.Favorites(ctx, token)
	return err == nil && f.HasExhibit(exhibitID)
}

// ToggleFavoriteHall flips the hall's membership in the user's favorites
// and returns the new state.  The id is not checked against the catalog.
func (a *Accounts) ToggleFavoriteHall(ctx context.Context, token, hallID string) (bool, error) {
	return a.toggle(ctx, token, repository.FavoriteHall, hallID)
}

// ToggleFavoriteExhibit is ToggleFavoriteHall for exhibits.
func (a *Accounts) ToggleFavoriteExhibit(ctx context.Context, token, exhibitID string) (bool, error) {
	return a.toggle(ctx, token, repository.FavoriteExhibit, exhibitID)
}

func (a *Accounts) toggle(ctx context.Context, token string, kind repository.FavoriteKind, id string) (bool, error) {
	u, ok := a.CurrentUser(ctx, token)
	if !ok {
		return false, ErrUnauthenticated
	}
	on, err := a.Store.ToggleFavorite(ctx, u.ID, kind, id)
	if err != nil {
		return false, err
	}
	metrics.FavoriteToggles.WithLabelValues(string(kind), strconv.FormatBool(on)).Inc()
	a.publish(queue.ActivityEvent{
		Type: queue.EventFavoriteToggle, UserID: u.ID, ItemKind: string(kind), ItemID: id, IsFavorite: &on,
	})
	return on, nil
}

// publish sends ev in the background; activity events never fail or slow
// down the request that produced them.
func (a *Accounts) publish(ev queue.ActivityEvent) {
	ev.OccurredAt = a.now().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Events.Publish(ctx, ev); err != nil {
			metrics.EventsPublished.WithLabelValues("error").Inc()
			return
		}
		metrics.EventsPublished.WithLabelValues("ok").Inc()
	}()
}

func (a *Accounts) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}
