package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ebilling/internal/amqp"
	"ebilling/internal/backend"
	"ebilling/internal/config"
	apphttp "ebilling/internal/http"
	applog "ebilling/internal/log"
	"ebilling/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Snapshot store
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
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

	// AMQP event publishing (optional; the mirror worker catches up anyway)
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(result.Store, publisher)
	if err := svc.Init(ctx); err != nil {
		logger.Error("Failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting ebilling server", "port", cfg.Port, "backend", cfg.SnapshotBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
