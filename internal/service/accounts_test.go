package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/history-museum/internal/queue"
	"github.com/iliyamo/history-museum/internal/repository"
	"github.com/iliyamo/history-museum/internal/session"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func newAccounts(t *testing.T, codec session.Codec) (*Accounts, *recordingPublisher) {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, repository.SeedDemo(context.Background(), store, bcrypt.MinCost))
	pub := &recordingPublisher{}
	a := NewAccounts(store, codec, pub, bcrypt.MinCost)
	a.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return a, pub
}

func codecs() map[string]session.Codec {
	return map[string]session.Codec{
		"mock": session.MockCodec{},
		"jwt":  session.NewJWTCodec("test-secret", time.Hour, session.NewMemoryRevocations()),
	}
}

func TestDemoScenario(t *testing.T) {
	for name, codec := range codecs() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, _ := newAccounts(t, codec)

			u, tok, err := a.SignIn(ctx, "admin@museum.ru", "admin123")
			require.NoError(t, err)
			assert.Equal(t, "1", u.ID)

			cur, ok := a.CurrentUser(ctx, tok.Value)
			require.True(t, ok)
			assert.Equal(t, "admin@museum.ru", cur.Email)

			on, err := a.ToggleFavoriteHall(ctx, tok.Value, "kievan-rus")
			require.NoError(t, err)
			assert.False(t, on)
			on, err = a.ToggleFavoriteHall(ctx, tok.Value, "kievan-rus")
			require.NoError(t, err)
			assert.True(t, on)
		})
	}
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})

	_, _, err := a.SignIn(ctx, "admin@museum.ru", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.SignIn(ctx, "nobody@museum.ru", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.SignIn(ctx, "ADMIN@museum.ru", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	a, pub := newAccounts(t, session.MockCodec{})

	u, tok, err := a.SignUp(ctx, SignUpInput{
		Email: "new@museum.ru", Password: "secret1", FirstName: "Пётр", LastName: "Смирнов",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", u.CreatedAt)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	cur, ok := a.CurrentUser(ctx, tok.Value)
	require.True(t, ok)
	assert.Equal(t, u.ID, cur.ID)

	fav, err := a.Favorites(ctx, tok.Value)
	require.NoError(t, err)
	assert.Empty(t, fav.Halls)
	assert.Empty(t, fav.Exhibits)

	_, _, err = a.SignIn(ctx, "new@museum.ru", "secret1")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool { return len(pub.types()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{queue.EventSignedUp, queue.EventSignedIn}, pub.types())
}

func TestSignUpDuplicateEmailDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})

	_, _, err := a.SignUp(ctx, SignUpInput{
		Email: "admin@museum.ru", Password: "another", FirstName: "X", LastName: "Y",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// The original account still signs in with its own password.
	_, _, err = a.SignIn(ctx, "admin@museum.ru", "admin123")
	assert.NoError(t, err)
	_, _, err = a.SignIn(ctx, "admin@museum.ru", "another")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})
	cases := []SignUpInput{
		{Email: "", Password: "secret1", FirstName: "A", LastName: "B"},
		{Email: "a@museum.ru", Password: "short", FirstName: "A", LastName: "B"},
		{Email: "a@museum.ru", Password: "secret1", FirstName: "", LastName: "B"},
		{Email: "a@museum.ru", Password: "secret1", FirstName: "A", LastName: ""},
		// 84 bytes: over bcrypt's limit although only 42 characters.
		{Email: "a@museum.ru", Password: strings.Repeat("пароль", 7), FirstName: "A", LastName: "B"},
	}
	for _, in := range cases {
		_, _, err := a.SignUp(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}
}

func TestCurrentUserAbsent(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})

	_, ok := a.CurrentUser(ctx, "")
	assert.False(t, ok)
	_, ok = a.CurrentUser(ctx, "not-base64!")
	assert.False(t, ok)

	ghost, err := session.MockCodec{}.Issue(ctx, "999")
	require.NoError(t, err)
	_, ok = a.CurrentUser(ctx, ghost.Value)
	assert.False(t, ok)
}

func TestSignOutRevokesJWT(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.NewJWTCodec("test-secret", time.Hour, session.NewMemoryRevocations()))

	_, tok, err := a.SignIn(ctx, "user@museum.ru", "user123")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx, tok.Value))

	_, ok := a.CurrentUser(ctx, tok.Value)
	assert.False(t, ok)
	assert.NoError(t, a.SignOut(ctx, ""))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})

	_, err := a.UpdateProfile(ctx, "", ProfilePatch{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, tok, err := a.SignIn(ctx, "user@museum.ru", "user123")
	require.NoError(t, err)

	taken := "admin@museum.ru"
	_, err = a.UpdateProfile(ctx, tok.Value, ProfilePatch{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	empty := ""
	_, err = a.UpdateProfile(ctx, tok.Value, ProfilePatch{FirstName: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	patronymic := "Павловна"
	u, err := a.UpdateProfile(ctx, tok.Value, ProfilePatch{Patronymic: &patronymic})
	require.NoError(t, err)
	assert.Equal(t, "Павловна", u.Patronymic)
	assert.Equal(t, "Мария", u.FirstName)
	assert.Equal(t, "user@museum.ru", u.Email)
}

func TestToggleRequiresSession(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})

	on, err := a.ToggleFavoriteExhibit(ctx, "", "gagarin-flight")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.False(t, on)

	_, err = a.Favorites(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.False(t, a.IsHallFavorite(ctx, "", "kievan-rus"))
}

func TestToggleFavoriteExhibitIsAnInvolution(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})
	_, tok, err := a.SignIn(ctx, "admin@museum.ru", "admin123")
	require.NoError(t, err)

	assert.True(t, a.IsExhibitFavorite(ctx, tok.Value, "baptism-of-rus"))
	on, err := a.ToggleFavoriteExhibit(ctx, tok.Value, "baptism-of-rus")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, a.IsExhibitFavorite(ctx, tok.Value, "baptism-of-rus"))
	on, err = a.ToggleFavoriteExhibit(ctx, tok.Value, "baptism-of-rus")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, a.IsHallFavorite(ctx, tok.Value, "kievan-rus"))

	// Unknown ids are accepted as-is.
	on, err = a.ToggleFavoriteExhibit(ctx, tok.Value, "no-such-exhibit")
	require.NoError(t, err)
	assert.True(t, on)
}

func TestSignUpAcceptsPasswordAtByteLimit(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, session.MockCodec{})

	pw := strings.Repeat("пароль", 6) // 72 bytes
	_, _, err := a.SignUp(ctx, SignUpInput{Email: "long@museum.ru", Password: pw, FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	_, _, err = a.SignIn(ctx, "long@museum.ru", pw)
	assert.NoError(t, err)
}

type brokenCodec struct{ session.MockCodec }

func (brokenCodec) Issue(context.Context, string) (session.Token, error) {
	return session.Token{}, errors.New("signing key unavailable")
}

func TestSignUpLeavesNoAccountWhenTokenFails(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccounts(t, brokenCodec{})

	_, _, err := a.SignUp(ctx, SignUpInput{Email: "new@museum.ru", Password: "secret1", FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)

	_, err = a.Store.GetUserByEmail(ctx, "new@museum.ru")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
