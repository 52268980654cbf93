package model

import "slices"

// User represents a museum visitor account.  The struct is shared by the
// in-memory and SQL stores; handlers never serialize it directly and use
// PublicUser instead so the password hash stays on the server.
//
// Fields:
//
//	ID           – opaque identifier ("1", "2" for the seed users, a UUID otherwise).
//	Email        – unique email address, compared case-sensitively.
//	PasswordHash – bcrypt hash of the password.
//	FirstName    – given name.
//	LastName     – family name.
//	Patronymic   – optional patronymic; empty when not provided.
//	CreatedAt    – creation date formatted as YYYY-MM-DD.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Patronymic   string
	CreatedAt    string
}

// PublicUser is the password-free view of a User returned to clients.
type PublicUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Patronymic string `json:"patronymic,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Patronymic: u.Patronymic,
		CreatedAt:  u.CreatedAt,
	}
}

// Favorites holds the ids a user marked as interesting.  Membership is all
// that matters; the slices keep insertion order for stable listing.
type Favorites struct {
	Halls    []string `json:"halls"`
	Exhibits []string `json:"exhibits"`
}

// HasHall reports whether id is among the favorite halls.
func (f Favorites) HasHall(id string) bool { return slices.Contains(f.Halls, id) }

// HasExhibit reports whether id is among the favorite exhibits.
func (f Favorites) HasExhibit(id string) bool { return slices.Contains(f.Exhibits, id) }
