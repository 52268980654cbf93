// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/history-museum/internal/config"
	"github.com/iliyamo/history-museum/internal/handler"
	"github.com/iliyamo/history-museum/internal/metrics"
	"github.com/iliyamo/history-museum/internal/middleware"
	"github.com/iliyamo/history-museum/internal/service"
)

// Deps carries everything the routes need.  Redis may be nil; the cache and
// the rate limiter then pass requests straight through.
type Deps struct {
	Accounts  *service.Accounts
	Public    *handler.PublicHandler
	Auth      *handler.AuthHandler
	Favorites *handler.FavoritesHandler
	Ready     *handler.ReadyHandler
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes registers every route.  The session middleware runs on all
// of them so the cache and rate limiter can tell visitors apart.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Resolve the cookie or bearer token into a user before any route runs.
	e.Use(middleware.Session(d.Accounts))

	// Liveness and readiness for the orchestrator.  /readyz is optional in
	// tests that build Deps by hand.
	e.GET("/healthz", handler.Health)
	if d.Ready != nil {
		e.GET("/readyz", d.Ready.Ready)
	}
	// Prometheus scrape endpoint backed by the private registry
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	RegisterPublic(e, d.Public, middleware.NewRedisCache(d.Cache, d.Redis))
	RegisterAuth(e, d.Auth, middleware.NewTokenBucket(d.RateLimit, d.Redis))
	RegisterFavorites(e, d.Favorites)
}

// RegisterPublic registers the catalog routes behind the response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	// Halls and the exhibits reached through a hall
	g.GET("/halls", p.ListHalls)
	g.GET("/halls/:id", p.GetHall)
	g.GET("/halls/:id/exhibits", p.ListHallExhibits)
	g.GET("/halls/:id/exhibits/:exhibitId", p.GetHallExhibit)
	// Flat exhibit routes used by the timeline and favorites pages
	g.GET("/exhibits", p.ListExhibits)
	g.GET("/exhibits/:id", p.GetExhibit)
	g.GET("/timeline", p.Timeline)
	g.GET("/developers", p.ListDevelopers)
}

// RegisterAuth registers sign-up/in/out under /v1/auth (rate limited) and
// the profile routes, which require a signed-in user.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	// Sign-up and sign-in set the auth_token cookie; sign-out clears it.
	g.POST("/signup", a.SignUp)
	g.POST("/signin", a.SignIn)
	g.POST("/signout", a.SignOut)

	// Profile of the signed-in user.  RequireUser answers 401 for guests.
	me := e.Group("/v1/me", middleware.RequireUser())
	me.GET("", a.Me)
	me.PATCH("", a.UpdateProfile)
}

// RegisterFavorites registers the favorites list and the toggle buttons.
// Toggles stay reachable anonymously and answer success=false.
func RegisterFavorites(e *echo.Echo, f *handler.FavoritesHandler) {
	e.GET("/v1/me/favorites", f.List, middleware.RequireUser())
	// No RequireUser here: the button expects 200 with success=false.
	e.POST("/v1/favorites/halls/:id/toggle", f.ToggleHall)
	e.POST("/v1/favorites/exhibits/:id/toggle", f.ToggleExhibit)
}
