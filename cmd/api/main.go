package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wardstockhq/wardstock-backend/api/routes"
	"github.com/wardstockhq/wardstock-backend/internal/identity"
	"github.com/wardstockhq/wardstock-backend/internal/policy"
	"github.com/wardstockhq/wardstock-backend/internal/script"
	"github.com/wardstockhq/wardstock-backend/internal/sheets"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	"github.com/wardstockhq/wardstock-backend/pkg/config"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/metrics"
	"github.com/wardstockhq/wardstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sheetsClient, err := sheets.NewClient(cfg.Sheets, logg)
	if err != nil {
		logg.Error(ctx, "failed to build sheets client", err)
		os.Exit(1)
	}

	scriptClient, err := script.NewClient(cfg.Script, logg)
	if err != nil {
		logg.Error(ctx, "failed to build script client", err)
		os.Exit(1)
	}

	profileStore := identity.NewRedisProfileStore(redisClient, cfg.JWT.SessionTTL())
	resolver := identity.NewResolver(profileStore, logg)
	guard := policy.NewGuard(sheetsClient, logg)

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)
	syncStore := store.New(sheetsClient, scriptClient, logg, syncMetrics)

	// Warm the cache before taking traffic; a cold failure is not fatal,
	// the poller keeps trying.
	if err := syncStore.RefreshProducts(ctx); err != nil {
		logg.Warn(ctx, "initial catalog refresh failed")
	}

	if cfg.Sync.PollEnabled {
		poller := store.NewPoller(syncStore, cfg.Sync.PollInterval, logg)
		go poller.Run(ctx)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	}), "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, resolver, guard, syncStore, registry),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
		logg.Info(context.Background(), "api server stopped")
	}
}
