package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is the liveness probe.  It returns "ok" whenever the process can
// serve requests.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ReadyHandler reports whether the backing services answer.  Both fields
// are optional: a nil DB (in-memory store) or nil Redis is skipped.
type ReadyHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// Ready pings every configured dependency and answers 503 with the failing
// ones listed when any of them is down.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	// Each entry is "ok" or the ping error text.
	checks := echo.Map{}
	ok := true
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			ok = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			ok = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if !ok {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "checks": checks})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "checks": checks})
}
