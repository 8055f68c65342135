package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/iudanet/stablehand/internal/client/api"
	"github.com/iudanet/stablehand/internal/client/auth"
	"github.com/iudanet/stablehand/internal/client/cli"
	"github.com/iudanet/stablehand/internal/client/iocli"
	"github.com/iudanet/stablehand/internal/client/storage/boltdb"
)

// Заполняются через ldflags при сборке.
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run держит defer-ы вне main, иначе os.Exit их проглотит
func run() error {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("STABLEHAND_SERVER", "http://localhost:8080"), "Server URL")
	dbPath := flag.String("db", envOr("STABLEHAND_DB", "stablehand-client.db"), "Path to local database")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Stablehand client %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		return fmt.Errorf("command required")
	}

	ctx := context.Background()

	// Фоновые синки пишут в stderr и только warning-и,
	// чтобы не мешать игровому выводу
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// В локальной базе токены и кошельки аккаунтов
	store, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)
	authService := auth.NewService(apiClient, store)
	app := cli.New(iocli.NewStdio(), apiClient, authService, store, logger)

	return app.Run(ctx, args[0], args[1:])
}

// envOr позволяет задавать адрес сервера и путь к базе без флагов
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
