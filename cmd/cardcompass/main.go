package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardcompass/internal/amqp"
	"cardcompass/internal/backend"
	"cardcompass/internal/catalog/file"
	"cardcompass/internal/collector"
	"cardcompass/internal/config"
	"cardcompass/internal/core"
	apphttp "cardcompass/internal/http"
	applog "cardcompass/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
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

	prefs, err := file.NewPreferenceStore(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to initialize preference store", applog.FieldError, err.Error())
		os.Exit(1)
	}

	// Refresh pipeline: queue over AMQP when a broker is configured,
	// otherwise run the collector inline on demand.
	var publisher apphttp.RefreshPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, refreshes will run inline", applog.FieldError, err.Error())
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
			logger.Info("Initialized AMQP refresh publisher",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	coll, err := buildCollector(cfg, logger)
	if err != nil {
		logger.Error("Failed to configure collector", applog.FieldError, err.Error())
		os.Exit(1)
	}

	recCfg := core.RecommendationConfig{
		BaselineRate:        cfg.BaselineRewardRate,
		MonthlyRewardTarget: cfg.MonthlyRewardTarget,
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Backend, prefs, publisher, coll, recCfg)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting cardcompass server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"amqp_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

func buildCollector(cfg *config.Config, logger *applog.Logger) (*collector.Collector, error) {
	sources := collector.DefaultSources()
	if cfg.CollectorSourcesFile != "" {
		loaded, err := collector.LoadSources(cfg.CollectorSourcesFile)
		if err != nil {
			return nil, err
		}
		sources = loaded
	}
	return collector.New(sources, cfg.CollectorDelay, logger), nil
}
