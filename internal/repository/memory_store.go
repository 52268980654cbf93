package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/iliyamo/history-museum/internal/model"
)

// MemoryStore keeps accounts in process memory.  Everything is lost on
// restart.  A single RWMutex serializes writers, so duplicate sign-ups and
// lost favorite updates cannot happen.
type MemoryStore struct {
	mu        sync.RWMutex
	users     []model.User
	favorites map[string]*model.Favorites
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{favorites: map[string]*model.Favorites{}}
}

func (s *MemoryStore) CreateUser(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	s.users = append(s.users, u)
	s.favorites[u.ID] = &model.Favorites{Halls: []string{}, Exhibits: []string{}}
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexByID(id); i >= 0 {
		return s.users[i], nil
	}
	return model.User{}, ErrUserNotFound
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, patch UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return model.User{}, ErrUserNotFound
	}
	if patch.Email != nil {
		for _, other := range s.users {
			if other.ID != id && other.Email == *patch.Email {
				return model.User{}, ErrEmailExists
			}
		}
	}
	s.users[i] = applyPatch(s.users[i], patch)
	return s.users[i], nil
}

func (s *MemoryStore) Favorites(_ context.Context, userID string) (model.Favorites, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.favorites[userID]
	if !ok {
		return model.Favorites{Halls: []string{}, Exhibits: []string{}}, nil
	}
	return model.Favorites{Halls: slices.Clone(f.Halls), Exhibits: slices.Clone(f.Exhibits)}, nil
}

func (s *MemoryStore) ToggleFavorite(_ context.Context, userID string, kind FavoriteKind, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.favorites[userID]
	if !ok {
		f = &model.Favorites{Halls: []string{}, Exhibits: []string{}}
		s.favorites[userID] = f
	}
	set := &f.Halls
	if kind == FavoriteExhibit {
		set = &f.Exhibits
	}
	if i := slices.Index(*set, itemID); i >= 0 {
		*set = slices.Delete(*set, i, i+1)
		return false, nil
	}
	*set = append(*set, itemID)
	return true, nil
}

func (s *MemoryStore) indexByID(id string) int {
	return slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == id })
}
