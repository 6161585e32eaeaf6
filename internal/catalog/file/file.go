// Package file implements the catalog ports on flat JSON files, the
// default backend. Every mutation rewrites the whole file; concurrent
// requests against the same data are last-write-wins.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cardcompass/internal/catalog"
	"cardcompass/internal/core"
)

const (
	cardsFile     = "credit_cards.json"
	userCardsFile = "user_cards.json"
)

type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore prepares the data directory, seeding the available-card file
// with the default catalog when it does not exist yet.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{dir: dir}

	if _, err := os.Stat(s.path(cardsFile)); errors.Is(err, os.ErrNotExist) {
		if err := writeJSON(s.path(cardsFile), seedCards()); err != nil {
			return nil, fmt.Errorf("seed card catalog: %w", err)
		}
		slog.Info("Seeded default card catalog", "path", s.path(cardsFile))
	}
	if _, err := os.Stat(s.path(userCardsFile)); errors.Is(err, os.ErrNotExist) {
		if err := writeJSON(s.path(userCardsFile), []core.Card{}); err != nil {
			return nil, fmt.Errorf("init user cards: %w", err)
		}
	}
	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) ListCards(_ context.Context) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCards(s.path(cardsFile))
}

func (s *Store) ListUserCards(_ context.Context) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCards(s.path(userCardsFile))
}

// AddUserCard copies the referenced catalog card into the user's
// collection and returns the copy.
func (s *Store) AddUserCard(_ context.Context, cardID string) (core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	available, err := readCards(s.path(cardsFile))
	if err != nil {
		return core.Card{}, err
	}
	var found *core.Card
	for i := range available {
		if available[i].ID == cardID {
			found = &available[i]
			break
		}
	}
	if found == nil {
		return core.Card{}, fmt.Errorf("%w: %s", catalog.ErrCardNotFound, cardID)
	}

	owned, err := readCards(s.path(userCardsFile))
	if err != nil {
		return core.Card{}, err
	}
	for _, c := range owned {
		if c.ID == cardID {
			return core.Card{}, fmt.Errorf("%w: %s", catalog.ErrDuplicateCard, cardID)
		}
	}

	owned = append(owned, *found)
	if err := writeJSON(s.path(userCardsFile), owned); err != nil {
		return core.Card{}, err
	}
	return *found, nil
}

func (s *Store) RemoveUserCard(_ context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, err := readCards(s.path(userCardsFile))
	if err != nil {
		return err
	}
	kept := owned[:0]
	removed := false
	for _, c := range owned {
		if c.ID == cardID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return fmt.Errorf("%w: %s", catalog.ErrCardNotFound, cardID)
	}
	return writeJSON(s.path(userCardsFile), kept)
}

// ReplaceCards overwrites the available catalog. Invalid records are
// rejected before anything is written.
func (s *Store) ReplaceCards(_ context.Context, cards []core.Card) error {
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("card %q: %w", c.ID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cards == nil {
		cards = []core.Card{}
	}
	return writeJSON(s.path(cardsFile), cards)
}

// ListCategories returns lines from categories.txt when the file is
// present, otherwise the built-in canonical enumeration.
func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	if cats := readLines(s.path("categories.txt")); len(cats) > 0 {
		return cats, nil
	}
	return core.CanonicalCategories(), nil
}

func readCards(path string) ([]core.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []core.Card{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cards []core.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cards, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
