package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cardcompass/internal/amqp"
	"cardcompass/internal/backend"
	"cardcompass/internal/collector"
	"cardcompass/internal/config"
	applog "cardcompass/internal/log"
	"cardcompass/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting cardcompass-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	factory := backend.NewFactory(nil)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize catalog backend", applog.FieldError, err.Error(), applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err.Error())
			}
		}()
	}

	sources := collector.DefaultSources()
	if cfg.CollectorSourcesFile != "" {
		sources, err = collector.LoadSources(cfg.CollectorSourcesFile)
		if err != nil {
			logger.Error("Failed to load collector sources", applog.FieldError, err.Error())
			os.Exit(1)
		}
	}
	coll := collector.New(sources, cfg.CollectorDelay, logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshWorker := worker.NewRefreshWorker(coll, result.Backend, cfg.RefreshInterval)

	go refreshWorker.RunPeriodicRefresh(ctx)

	go func() {
		err := amqpClient.ConsumeCatalogRefresh(ctx, func(msg *amqp.CatalogRefreshMessage) error {
			return refreshWorker.HandleRefreshMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Worker running",
		applog.FieldBackend, cfg.DataBackend,
		"queue", cfg.AMQPQueue,
		"refresh_interval", cfg.RefreshInterval.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}

	logger.Info("Worker stopped gracefully")
}
