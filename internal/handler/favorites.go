package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/history-museum/internal/middleware"
	"github.com/iliyamo/history-museum/internal/service"
)

// FavoritesHandler serves the favorite buttons and the favorites list.
type FavoritesHandler struct {
	Accounts *service.Accounts
}

type toggleResp struct {
	Success    bool `json:"success"`
	IsFavorite bool `json:"isFavorite"`
}

// List returns the signed-in user's favorite hall and exhibit ids.
func (h *FavoritesHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fav, err := h.Accounts.Favorites(ctx, middleware.SessionToken(c))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			return fail(c, http.StatusUnauthorized, middleware.MsgUnauthenticated)
		}
		c.Logger().Errorf("favorites: %v", err)
		return fail(c, http.StatusInternalServerError, msgInternal)
	}
	return c.JSON(http.StatusOK, fav)
}

// ToggleHall flips a hall in the favorites.  Anonymous callers get
// success=false rather than an error status, matching the button contract.
func (h *FavoritesHandler) ToggleHall(c echo.Context) error {
	return h.toggle(c, h.Accounts.ToggleFavoriteHall)
}

func (h *FavoritesHandler) ToggleExhibit(c echo.Context) error {
	return h.toggle(c, h.Accounts.ToggleFavoriteExhibit)
}

func (h *FavoritesHandler) toggle(c echo.Context, fn func(context.Context, string, string) (bool, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	on, err := fn(ctx, middleware.SessionToken(c), c.Param("id"))
	if err != nil {
		// Guests are expected here, so only real failures are logged.
		if !errors.Is(err, service.ErrUnauthenticated) {
			c.Logger().Errorf("toggle favorite %s: %v", c.Param("id"), err)
		}
		return c.JSON(http.StatusOK, toggleResp{Success: false, IsFavorite: false})
	}
	return c.JSON(http.StatusOK, toggleResp{Success: true, IsFavorite: on})
}
