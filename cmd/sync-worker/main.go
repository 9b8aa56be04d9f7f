package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wardstockhq/wardstock-backend/internal/sheets"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	"github.com/wardstockhq/wardstock-backend/pkg/config"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/metrics"
)

// sync-worker polls the spreadsheet on the configured interval without
// serving HTTP. Deployments that want cache warming separated from the
// API process run this next to it.
func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsClient, err := sheets.NewClient(cfg.Sheets, logg)
	if err != nil {
		logg.Error(ctx, "failed to build sheets client", err)
		os.Exit(1)
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	syncStore := store.New(sheetsClient, nil, logg, syncMetrics)

	if err := syncStore.RefreshProducts(ctx); err != nil {
		logg.Warn(ctx, "initial catalog refresh failed")
	}

	poller := store.NewPoller(syncStore, cfg.Sync.PollInterval, logg)
	poller.Run(ctx)
}
