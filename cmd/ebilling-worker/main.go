package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ebilling/internal/amqp"
	"ebilling/internal/backend"
	"ebilling/internal/config"
	applog "ebilling/internal/log"
	gsheet "ebilling/internal/sheets/google"
	"ebilling/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting ebilling-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot store shared with the server (sqlite or file)
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Error("Worker needs a shared snapshot backend (sqlite or file), not memory")
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize snapshot store", "error", err, "backend", cfg.SnapshotBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Snapshot store cleanup failed", "error", err)
			}
		}()
	}

	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirrorWorker := worker.NewMirrorWorker(result.Store, sheetsClient)

	// Catch up once before consuming, so a worker restart repairs the mirror
	if err := mirrorWorker.MirrorOnce(ctx); err != nil {
		logger.Error("Startup mirror failed", "error", err)
		// Keep running; the periodic loop retries
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
				return mirrorWorker.HandleEvent(ctx, msg)
			})
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic mirroring only")
	}

	g.Go(func() error {
		return mirrorWorker.RunPeriodic(ctx, cfg.MirrorInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
