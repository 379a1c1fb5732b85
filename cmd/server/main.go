package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/film-review/internal/config"
	"github.com/iliyamo/film-review/internal/database"
	"github.com/iliyamo/film-review/internal/handler"
	"github.com/iliyamo/film-review/internal/middleware"
	"github.com/iliyamo/film-review/internal/queue"
	"github.com/iliyamo/film-review/internal/repository"
	"github.com/iliyamo/film-review/internal/router"
	"github.com/iliyamo/film-review/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbOpts := database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	}
	if err := database.Migrate(dbOpts); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	db, dialect, err := database.Open(dbOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	eventsCfg, err := config.LoadEventsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid events configuration")
	}
	var events service.EventPublisher = service.NopPublisher{}
	if eventsCfg.Enabled {
		events = service.AMQPPublisher{URL: eventsCfg.URL, Queue: eventsCfg.Queue}
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	cacheCfg := config.LoadCacheConfig()
	cacheGen := middleware.NewCacheGeneration(cacheCfg, rdb)

	films := repository.NewFilmRepo(db, dialect)
	reviews := repository.NewReviewRepo(db, dialect)
	users := repository.NewUserRepo(db, dialect)
	tokens := repository.NewTokenRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID(), middleware.RequestLogger())
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Handlers{
		Films:   handler.NewFilmHandler(service.NewFilmService(films, events, cacheGen, cfg.PageSize)),
		Reviews: handler.NewReviewHandler(service.NewReviewService(reviews, events, cacheGen, cfg.PageSize)),
		Users:   handler.NewUserHandler(users),
		Auth:    handler.NewAuthHandler(cfg, users, tokens),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
	})

	g, gctx := errgroup.WithContext(ctx)
	addr := ":" + cfg.Port
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", string(dialect)).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if eventsCfg.ConsumerEnabled {
		consumer := queue.Consumer{URL: eventsCfg.URL, Queue: eventsCfg.Queue, LogDir: eventsCfg.LogDir}
		g.Go(func() error { return consumer.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("shutdown complete")
}

// setupLogger configures the global zerolog logger: human-readable output in
// dev, JSON otherwise.
func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
