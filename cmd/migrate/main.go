package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"lectopus/internal/config"
	"lectopus/internal/logging"
	"lectopus/internal/platform/postgres"
)

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: "text"})

	dir := migrationsDir()
	if opts.command == "create" {
		if err := goose.Create(nil, dir, opts.name, "sql"); err != nil {
			logger.Error("failed to create migration", "error", err)
			os.Exit(1)
		}
		logger.Info("migration created", "name", opts.name, "dir", dir)
		return
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "dsn", postgres.RedactDSN(cfg.Database.DSN), "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrate(ctx, db, opts.command, dir); err != nil {
		logger.Error("migration failed", "command", opts.command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "command", opts.command)
}

func migrate(ctx context.Context, db *sql.DB, command, dir string) error {
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, dir)
	case "down":
		return goose.DownContext(ctx, db, dir)
	default:
		return goose.StatusContext(ctx, db, dir)
	}
}
