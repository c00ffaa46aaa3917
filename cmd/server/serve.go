package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/wanderlist/internal/api"
	"github.com/mmynk/wanderlist/internal/auth"
	"github.com/mmynk/wanderlist/internal/config"
	"github.com/mmynk/wanderlist/internal/middleware"
	"github.com/mmynk/wanderlist/internal/service"
	"github.com/mmynk/wanderlist/internal/storage/sqlite"
	"github.com/mmynk/wanderlist/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API server",
		Action: serve,
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.Setup(cfg.Log.Level), nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := sqlite.NewWithOptions(ctx, cfg.Database.Path, sqlite.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.Database.Path)

	var tokens *auth.JWTManager
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	} else {
		logger.Warn("JWT secret is empty; login will not issue tokens")
	}

	services := service.New(store, service.Options{
		Tokens:   tokens,
		StatsTTL: cfg.Cache.StatsTTL.Duration,
	}, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := api.SetupRouter(&api.Dependencies{
		Services:       services,
		DB:             store,
		Tokens:         tokens,
		RequireAuth:    cfg.Auth.Required,
		Logger:         logger,
		Limiter:        middleware.NewLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Registry:       registry,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
