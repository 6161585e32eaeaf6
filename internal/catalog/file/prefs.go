package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cardcompass/internal/core"
)

const preferencesFile = "user_preferences.json"

// Preferences holds the user's saved reward preference and their last
// entered monthly spending, so the optimize form can be pre-filled.
type Preferences struct {
	RewardPreference core.RewardType    `json:"reward_preference"`
	MonthlySpending  map[string]float64 `json:"monthly_spending"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// PreferenceStore is file-backed independent of the catalog backend;
// preferences stay local even when the catalog lives in SQLite or
// Sheets.
type PreferenceStore struct {
	mu   sync.Mutex
	path string
}

func NewPreferenceStore(dir string) (*PreferenceStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &PreferenceStore{path: filepath.Join(dir, preferencesFile)}, nil
}

func (s *PreferenceStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Preferences{MonthlySpending: map[string]float64{}}, nil
		}
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("parse preferences: %w", err)
	}
	if p.MonthlySpending == nil {
		p.MonthlySpending = map[string]float64{}
	}
	return p, nil
}

func (s *PreferenceStore) Save(p Preferences) error {
	if p.RewardPreference != "" && !p.RewardPreference.IsValid() {
		return fmt.Errorf("%w: preference %q", core.ErrInvalidInput, p.RewardPreference)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	return writeJSON(s.path, p)
}
