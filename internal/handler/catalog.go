// Package handler exposes the HTTP handlers of the museum API.
// This file serves the read-only catalog: halls, exhibits, the timeline and
// the development team.  None of these routes require a session, but when a
// visitor is signed in the detail pages report whether the item is among
// their favorites.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/history-museum/internal/catalog"
	"github.com/iliyamo/history-museum/internal/metrics"
	"github.com/iliyamo/history-museum/internal/middleware"
	"github.com/iliyamo/history-museum/internal/model"
	"github.com/iliyamo/history-museum/internal/service"
)

// minutesPerExhibit is the visit time the hall page budgets per exhibit.
const minutesPerExhibit = 5

const (
	msgHallNotFound    = "Зал не найден"
	msgExhibitNotFound = "Экспонат не найден"
)

// PublicHandler serves the catalog.  Accounts may be nil, in which case
// every isFavorite flag is false.
type PublicHandler struct {
	Catalog  *catalog.Catalog
	Accounts *service.Accounts
}

// hallDetail is a hall page: the hall itself, its estimated visit time and
// the other halls the page suggests visiting next.
type hallDetail struct {
	model.Hall
	VisitMinutes int          `json:"visitMinutes"`
	IsFavorite   bool         `json:"isFavorite"`
	OtherHalls   []model.Hall `json:"otherHalls"`
}

type exhibitDetail struct {
	model.Exhibit
	DateLabel  string `json:"dateLabel"`
	IsFavorite bool   `json:"isFavorite"`
}

// hallExhibitDetail is an exhibit page reached from its hall, with
// navigation to the neighbouring exhibits of the same hall.
type hallExhibitDetail struct {
	Exhibit exhibitDetail  `json:"exhibit"`
	Hall    model.Hall     `json:"hall"`
	Prev    *model.Exhibit `json:"prev"`
	Next    *model.Exhibit `json:"next"`
}

type timelineEntry struct {
	model.Exhibit
	DateLabel string `json:"dateLabel"`
}

// ListHalls returns every hall with its exhibit count.
func (h *PublicHandler) ListHalls(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("halls").Inc()
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.ListHalls()})
}

// GetHall returns one hall and the list of the others.
func (h *PublicHandler) GetHall(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("hall").Inc()
	id := c.Param("id")
	hall, ok := h.Catalog.GetHall(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgHallNotFound})
	}
	// Guests and anonymous tokens always see isFavorite=false.
	return c.JSON(http.StatusOK, hallDetail{
		Hall:         hall,
		VisitMinutes: hall.ExhibitsCount * minutesPerExhibit,
		IsFavorite:   h.Accounts != nil && h.Accounts.IsHallFavorite(c.Request().Context(), middleware.SessionToken(c), id),
		OtherHalls:   h.Catalog.OtherHalls(id),
	})
}

// ListHallExhibits lists the exhibits of a hall in display order.
func (h *PublicHandler) ListHallExhibits(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("hall_exhibits").Inc()
	id := c.Param("id")
	if _, ok := h.Catalog.GetHall(id); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgHallNotFound})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.ListExhibitsByHall(id)})
}

// GetHallExhibit returns an exhibit only if it belongs to the hall in the
// path, together with the hall and the previous/next exhibits.
func (h *PublicHandler) GetHallExhibit(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("hall_exhibit").Inc()
	hallID, exhibitID := c.Param("id"), c.Param("exhibitId")
	hall, ok := h.Catalog.GetHall(hallID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgHallNotFound})
	}
	// An exhibit from another hall is a 404, not a redirect.
	ex, ok := h.Catalog.GetHallExhibit(hallID, exhibitID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgExhibitNotFound})
	}
	// prev/next are null at either end of the hall
	prev, next := h.Catalog.ExhibitNeighbors(hallID, exhibitID)
	return c.JSON(http.StatusOK, hallExhibitDetail{
		Exhibit: h.exhibitDetail(c, ex),
		Hall:    hall,
		Prev:    prev,
		Next:    next,
	})
}

// ListExhibits returns every exhibit in fixture order.
func (h *PublicHandler) ListExhibits(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("exhibits").Inc()
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.ListExhibits()})
}

func (h *PublicHandler) GetExhibit(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("exhibit").Inc()
	ex, ok := h.Catalog.GetExhibit(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgExhibitNotFound})
	}
	return c.JSON(http.StatusOK, h.exhibitDetail(c, ex))
}

// Timeline returns all exhibits ordered by start year.
func (h *PublicHandler) Timeline(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("timeline").Inc()
	exhibits := h.Catalog.ListExhibitsByDate()
	out := make([]timelineEntry, 0, len(exhibits))
	for _, ex := range exhibits {
		out = append(out, timelineEntry{Exhibit: ex, DateLabel: ex.DateLabel()})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *PublicHandler) ListDevelopers(c echo.Context) error {
	metrics.CatalogRequests.WithLabelValues("developers").Inc()
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.ListDevelopers()})
}

func (h *PublicHandler) exhibitDetail(c echo.Context, ex model.Exhibit) exhibitDetail {
	fav := h.Accounts != nil && h.Accounts.IsExhibitFavorite(c.Request().Context(), middleware.SessionToken(c), ex.ID)
	return exhibitDetail{Exhibit: ex, DateLabel: ex.DateLabel(), IsFavorite: fav}
}
