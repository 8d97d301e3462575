package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/furniture_shop/internal/app"
	"github.com/Skotchmaster/furniture_shop/internal/config"
	"github.com/Skotchmaster/furniture_shop/internal/db"
	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/search"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db close error", "error", err)
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	pub := events.New(cfg.KafkaBrokers, logger)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}()

	opts := app.Options{Config: cfg, DB: gdb, Events: pub, Logger: logger}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			return err
		}
		idx := search.NewESIndex(es, cfg.ESIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			return err
		}
		opts.Search = idx
	} else {
		logger.Warn("ES_URL not set, product search uses the database")
	}

	a := app.New(opts)
	if err := a.Auth.EnsureAdmin(logging.IntoContext(ctx, logger), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      a.Echo,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
