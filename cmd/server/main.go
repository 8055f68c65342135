package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/stablehand/internal/server/cache"
	"github.com/iudanet/stablehand/internal/server/config"
	"github.com/iudanet/stablehand/internal/server/handlers"
	"github.com/iudanet/stablehand/internal/server/middleware"
	"github.com/iudanet/stablehand/internal/server/reconcile"
	"github.com/iudanet/stablehand/internal/server/router"
	"github.com/iudanet/stablehand/internal/server/storage/sqldb"
	"github.com/iudanet/stablehand/internal/server/sweep"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Контекст живет до SIGINT/SIGTERM, дальше начинается graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище: sqlite или postgres, миграции накатываются на старте
	db, err := sqldb.New(ctx, sqldb.Dialect(cfg.Database.Dialect), cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	appCache, err := newCache(cfg)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer func() {
		if err := appCache.Close(); err != nil {
			logger.Error("failed to close cache", slog.Any("error", err))
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(cfg.Auth.JWTSecret),
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}

	engine := reconcile.New(db, logger)

	r := router.New(router.Config{
		Logger:        logger,
		JWTConfig:     jwtConfig,
		Auth:          handlers.NewAuthHandler(logger, db, db, db, jwtConfig),
		Game:          handlers.NewGameHandler(logger, engine),
		Leaderboard:   handlers.NewLeaderboardHandler(logger, db, appCache, cfg.Leaderboard.TTL, cfg.Leaderboard.Limit),
		Health:        handlers.NewHealthHandler(logger, db, Version),
		AuthRateLimit: middleware.RateLimitMiddleware(cfg.RateLimit.AuthRate, cfg.RateLimit.AuthWindow, logger),
		GameRateLimit: middleware.RateLimitMiddleware(cfg.RateLimit.GameRate, cfg.RateLimit.GameWindow, logger),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweeper := sweep.New(logger, db, cfg.Sweep.Interval)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening",
			slog.String("addr", cfg.Server.Address()),
			slog.String("dialect", cfg.Database.Dialect),
			slog.String("cache", cfg.Cache.Backend),
			slog.String("version", Version))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// newCache выбирает бэкенд кэша. По умолчанию in-memory: для одного
// инстанса этого достаточно, redis нужен когда инстансов несколько.
func newCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func printVersion() {
	fmt.Printf("Stablehand Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
