// Command server runs the portfolio site: the public pages, the JSON API and
// the admin endpoints.
//
// Configuration comes from the environment (see internal/config); a .env file
// in the working directory is loaded first when present.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/media"
	"github.com/sakif/portfolio/internal/repository/sqlstore"
	"github.com/sakif/portfolio/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.DBDriver == sqlstore.SQLite {
		if err := sqlstore.EnsureDir(cfg.DBDSN); err != nil {
			fatal(logger, "failed to create database directory", err)
		}
	}

	db, err := sqlstore.Open(startCtx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		fatal(logger, "failed to open database", err)
	}

	// The storage client keeps its context for the life of the process, so it
	// must not inherit the startup deadline.
	store, err := media.New(context.Background(), cfg.Media, logger)
	if err != nil {
		db.Close()
		fatal(logger, "failed to configure media store", err)
	}

	srv, err := server.New(cfg, db, store, logger)
	if err != nil {
		db.Close()
		fatal(logger, "failed to create server", err)
	}

	// Start blocks until SIGINT/SIGTERM and closes the database on return.
	if err := srv.Start(); err != nil {
		fatal(logger, "server error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
