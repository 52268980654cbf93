package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/history-museum/internal/model"
	"github.com/iliyamo/history-museum/internal/utils"
)

type demoAccount struct {
	user     model.User
	password string
	halls    []string
	exhibits []string
}

// demoAccounts are the two accounts the museum ships with.
var demoAccounts = []demoAccount{
	{
		user: model.User{
			ID:         "1",
			Email:      "admin@museum.ru",
			FirstName:  "Иван",
			LastName:   "Петров",
			Patronymic: "Сергеевич",
			CreatedAt:  "2024-01-01",
		},
		password: "admin123",
		halls:    []string{"kievan-rus"},
		exhibits: []string{"baptism-of-rus"},
	},
	{
		user: model.User{
			ID:        "2",
			Email:     "user@museum.ru",
			FirstName: "Мария",
			LastName:  "Иванова",
			CreatedAt: "2024-02-15",
		},
		password: "user123",
	},
}

// SeedDemo inserts the demo accounts and their favorites.  Accounts that
// already exist are left untouched, so seeding a persistent store on every
// start is safe.
func SeedDemo(ctx context.Context, s AccountStore, bcryptCost int) error {
	for _, acc := range demoAccounts {
		u := acc.user
		hash, err := utils.HashPassword(acc.password, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		u.PasswordHash = hash
		if err := s.CreateUser(ctx, u); err != nil {
			if errors.Is(err, ErrEmailExists) {
				continue
			}
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		for _, id := range acc.halls {
			if _, err := s.ToggleFavorite(ctx, u.ID, FavoriteHall, id); err != nil {
				return fmt.Errorf("seed favorite hall %s: %w", id, err)
			}
		}
		for _, id := range acc.exhibits {
			if _, err := s.ToggleFavorite(ctx, u.ID, FavoriteExhibit, id); err != nil {
				return fmt.Errorf("seed favorite exhibit %s: %w", id, err)
			}
		}
	}
	return nil
}
