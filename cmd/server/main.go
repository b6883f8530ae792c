// Package main implements the fitdash API server: gym memberships, class
// bookings, workout and diet tracking, and gym competitions over a JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fitdash/fitdash-api/internal/config"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("fitdash-api exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// options holds the parsed command line flags.
type options struct {
	migrate     string
	migrateOnly bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := flag.NewFlagSet("fitdash-api", flag.ContinueOnError)
	flags.StringVar(&opts.migrate, "migrate", "",
		"run a database migration command (up, down, reset, status, version) and exit")
	flags.BoolVar(&opts.migrateOnly, "migrate-only", false,
		"apply pending migrations and exit without serving")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if opts.migrate != "" {
		if err := validateMigrationCommand(opts.migrate); err != nil {
			return options{}, err
		}
	}
	if opts.migrateOnly && opts.migrate == "" {
		opts.migrate = "up"
	}
	return opts, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	// A .env file is optional; the environment always takes precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("payment_provider", cfg.Payments.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db, opts.migrate, log)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, db, "up", log); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
