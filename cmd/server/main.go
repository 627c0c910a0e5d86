// Package main runs the metadata steward HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akanksha86/governance-metadata-propagation/internal/app"
	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/db"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	writeDB, readDB, err := db.OpenSQLitePair(cfg.MetaDBPath, 8)
	if err != nil {
		return err
	}
	defer func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	}()

	if err := db.RunMigrations(writeDB); err != nil {
		return err
	}

	a, err := app.New(app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	if err != nil {
		return err
	}

	if err := a.Scheduler.Start(); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
