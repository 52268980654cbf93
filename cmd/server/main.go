package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/history-museum/internal/catalog"
	"github.com/iliyamo/history-museum/internal/config"
	"github.com/iliyamo/history-museum/internal/database"
	"github.com/iliyamo/history-museum/internal/handler"
	"github.com/iliyamo/history-museum/internal/queue"
	"github.com/iliyamo/history-museum/internal/repository"
	"github.com/iliyamo/history-museum/internal/router"
	"github.com/iliyamo/history-museum/internal/service"
	"github.com/iliyamo/history-museum/internal/session"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if err := cat.Validate(); err != nil {
		log.Fatalf("catalog: %v", err)
	}

	db, dialect, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	var store repository.AccountStore = repository.NewMemoryStore()
	if db != nil {
		defer db.Close()
		store = repository.NewSQLStore(db, dialect)
	}
	if cfg.SeedDemo {
		if err := repository.SeedDemo(ctx, store, cfg.BcryptCost); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Printf("redis: disabled or unreachable; cache and rate limiting are off")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.AMQPPublisher{URL: cfg.AMQPURL, Queue: cfg.ActivityQueue}
		if cfg.RunConsumer {
			consumer := queue.Consumer{URL: cfg.AMQPURL, Queue: cfg.ActivityQueue, LogPath: cfg.ActivityLogPath}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("activity-consumer: stopped: %v", err)
				}
			}()
		}
	}

	accounts := service.NewAccounts(store, newCodec(cfg, rdb), events, cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(glog.INFO)
	if !cfg.Secure() {
		e.Logger.SetLevel(glog.DEBUG)
	}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	router.RegisterRoutes(e, router.Deps{
		Accounts:  accounts,
		Public:    &handler.PublicHandler{Catalog: cat, Accounts: accounts},
		Auth:      handler.NewAuthHandler(accounts, cfg.Secure()),
		Favorites: &handler.FavoritesHandler{Accounts: accounts},
		Ready:     &handler.ReadyHandler{DB: db, Redis: rdb},
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		e.Logger.Infof("listening on %s (env=%s store=%s session=%s)", addr, cfg.Env, cfg.StoreDriver, cfg.SessionMode)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}

// newCodec picks the session codec.  JWT revocations live in Redis when it
// is available so every instance sees a sign-out.
func newCodec(cfg config.Config, rdb *redis.Client) session.Codec {
	if cfg.SessionMode == "mock" {
		log.Printf("session: mock tokens are unsigned; do not use outside demos")
		return session.MockCodec{TTL: cfg.SessionTTL}
	}
	var rev session.Revocations = session.NewMemoryRevocations()
	if rdb != nil {
		rev = session.NewRedisRevocations(rdb, "museum:revoked")
	}
	return session.NewJWTCodec(cfg.JWTSecret, cfg.SessionTTL, rev)
}
