// Package worker runs catalog refreshes triggered over AMQP, with a
// periodic fallback refresh in case messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardcompass/internal/amqp"
	"cardcompass/internal/catalog"
	"cardcompass/internal/collector"
)

type RefreshWorker struct {
	collector *collector.Collector
	store     catalog.CatalogReplacer
	interval  time.Duration
}

// NewRefreshWorker builds a worker. interval sets the periodic fallback
// refresh cadence; zero disables it.
func NewRefreshWorker(c *collector.Collector, store catalog.CatalogReplacer, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		collector: c,
		store:     store,
		interval:  interval,
	}
}

// HandleRefreshMessage processes a single catalog refresh request.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.CatalogRefreshMessage) error {
	slog.InfoContext(ctx, "Processing catalog refresh",
		"source", msg.Source,
		"requested_at", msg.RequestedAt)

	if err := w.collector.Run(ctx, w.store, msg.Source); err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	slog.InfoContext(ctx, "Catalog refresh completed", "source", msg.Source)
	return nil
}

// RunPeriodicRefresh refreshes all sources on a ticker until the
// context is cancelled. Failures are logged and retried on the next
// tick.
func (w *RefreshWorker) RunPeriodicRefresh(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.collector.Run(ctx, w.store, ""); err != nil {
				slog.ErrorContext(ctx, "Periodic catalog refresh failed", "error", err)
			} else {
				slog.InfoContext(ctx, "Periodic catalog refresh completed")
			}
		}
	}
}
