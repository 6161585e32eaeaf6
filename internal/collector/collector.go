// Package collector gathers credit card reward data from issuer feeds.
// Feed failures stay inside the collector: a bad source is logged and
// skipped, and the optimizer only ever sees validated card records.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cardcompass/internal/catalog"
	"cardcompass/internal/core"
	"cardcompass/internal/log"
)

const maxConcurrentFetches = 3

type Collector struct {
	client  *http.Client
	sources []Source
	delay   time.Duration
	logger  *log.Logger
}

func New(sources []Source, delay time.Duration, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Collector{
		client:  newHTTPClient(),
		sources: sources,
		delay:   delay,
		logger:  logger.WithComponent(log.ComponentCollector),
	}
}

// newHTTPClient builds a pooled client sized for a handful of issuer
// hosts.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
		},
		Timeout: 30 * time.Second,
	}
}

// Collect fetches every configured source (or just the named one),
// bounded to a few fetches in flight. Per-source failures are logged
// and skipped; an error is returned only when nothing at all could be
// collected. Cards are validated, their reward category labels
// normalized, and duplicate ids dropped keeping the first occurrence.
func (c *Collector) Collect(ctx context.Context, sourceFilter string) ([]core.Card, error) {
	selected := c.selectSources(sourceFilter)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no collector source matches %q", sourceFilter)
	}

	results := make([][]core.Card, len(selected))
	var mu sync.Mutex
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, src := range selected {
		i, src := i, src
		g.Go(func() error {
			cards, err := c.fetchSource(gctx, src)
			if err != nil {
				c.logger.WarnContext(gctx, "Source fetch failed",
					log.FieldSource, src.Issuer,
					log.FieldError, err.Error())
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}
			results[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failures == len(selected) {
		return nil, fmt.Errorf("all %d collector sources failed", failures)
	}

	var merged []core.Card
	seen := make(map[string]struct{})
	for i, cards := range results {
		for _, card := range cards {
			card = normalizeCard(card)
			if err := card.Validate(); err != nil {
				c.logger.WarnContext(ctx, "Dropping invalid card record",
					log.FieldSource, selected[i].Issuer,
					log.FieldCardID, card.ID,
					log.FieldError, err.Error())
				continue
			}
			if _, dup := seen[card.ID]; dup {
				continue
			}
			seen[card.ID] = struct{}{}
			merged = append(merged, card)
		}
	}

	c.logger.InfoContext(ctx, "Collected card data",
		log.FieldCardCount, len(merged),
		"sources", len(selected),
		"failed_sources", failures)
	return merged, nil
}

// Run collects and replaces the catalog in one step.
func (c *Collector) Run(ctx context.Context, store catalog.CatalogReplacer, sourceFilter string) error {
	cards, err := c.Collect(ctx, sourceFilter)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if err := store.ReplaceCards(ctx, cards); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

func (c *Collector) selectSources(filter string) []Source {
	if filter == "" {
		return c.sources
	}
	var out []Source
	for _, s := range c.sources {
		if s.Issuer == filter {
			out = append(out, s)
		}
	}
	return out
}

func (c *Collector) fetchSource(ctx context.Context, src Source) ([]core.Card, error) {
	if src.FeedURL == "" {
		// Curated static dataset, nothing to fetch.
		return src.Cards, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cardcompass-collector/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.FeedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", src.FeedURL, resp.StatusCode)
	}

	var cards []core.Card
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.FeedURL, err)
	}

	// Politeness delay between remote requests to the same issuer.
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return cards, nil
}

// normalizeCard maps the reward category labels issuers use onto the
// canonical category names, so rate resolution can stay an exact match.
// Labels outside the enumeration (all_purchases, issuer promos) are
// kept as-is; they simply never match a spending category.
func normalizeCard(card core.Card) core.Card {
	if len(card.Rewards.Categories) == 0 {
		return card
	}
	normalized := make(map[string]float64, len(card.Rewards.Categories))
	for label, rate := range card.Rewards.Categories {
		name, known := core.NormalizeCategory(label)
		if !known {
			name = label
		}
		// On collisions (e.g. "dining" and "restaurants" both present)
		// the higher rate wins.
		if existing, ok := normalized[name]; !ok || rate > existing {
			normalized[name] = rate
		}
	}
	card.Rewards.Categories = normalized
	return card
}
