package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"cardcompass/internal/backend"
	"cardcompass/internal/collector"
	"cardcompass/internal/config"
	applog "cardcompass/internal/log"
)

// One-shot catalog collection. By default the result replaces the
// configured backend's catalog; -dry-run prints the collected cards as
// JSON instead.
func main() {
	var (
		source = flag.String("source", "", "collect only this issuer source (default: all)")
		dryRun = flag.Bool("dry-run", false, "print collected cards instead of writing the catalog")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	sources := collector.DefaultSources()
	if cfg.CollectorSourcesFile != "" {
		loaded, err := collector.LoadSources(cfg.CollectorSourcesFile)
		if err != nil {
			logger.Error("Failed to load collector sources", applog.FieldError, err.Error())
			os.Exit(1)
		}
		sources = loaded
	}
	coll := collector.New(sources, cfg.CollectorDelay, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CollectorTimeout)
	defer cancel()

	if *dryRun {
		cards, err := coll.Collect(ctx, *source)
		if err != nil {
			logger.Error("Collection failed", applog.FieldError, err.Error())
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cards); err != nil {
			logger.Error("Failed to encode cards", applog.FieldError, err.Error())
			os.Exit(1)
		}
		return
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	factory := backend.NewFactory(nil)
	result, err := factory.CreateBackend(ctx, backendCfg)
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

	if err := coll.Run(ctx, result.Backend, *source); err != nil {
		logger.Error("Catalog refresh failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Catalog refreshed", applog.FieldBackend, cfg.DataBackend)
}
