package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	Cashback RewardType = "cashback"
	Points   RewardType = "points"
)

type (
	// RewardType distinguishes how a card's rates are interpreted:
	// cashback rates are a percentage of spend, points rates are
	// points earned per currency unit.
	RewardType string

	// SignUpBonus is informational only and never enters optimization.
	SignUpBonus struct {
		Amount      string `json:"amount"`
		Requirement string `json:"requirement"`
	}

	Rewards struct {
		BaseRate   float64            `json:"base_rate"`
		Categories map[string]float64 `json:"categories,omitempty"`
		// RotatingSchedule maps quarters (Q1..Q4) to a promotional
		// category label. Carried through deserialization for display
		// and recommendations; it does not affect rate resolution.
		RotatingSchedule map[string]string `json:"rotating_schedule,omitempty"`
	}

	Card struct {
		ID          string       `json:"id"`
		Name        string       `json:"name"`
		Issuer      string       `json:"issuer"`
		Type        RewardType   `json:"type"`
		Rewards     Rewards      `json:"rewards"`
		AnnualFee   float64      `json:"annual_fee"`
		SignUpBonus *SignUpBonus `json:"sign_up_bonus,omitempty"`
	}

	// SpendingRequest maps category names to monthly amounts. Preference
	// is empty when the caller has no reward-type preference.
	SpendingRequest struct {
		Categories map[string]float64 `json:"categories"`
		Preference RewardType         `json:"preference,omitempty"`
	}
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyCardID       = errors.New("empty card id")
	ErrEmptyCardName     = errors.New("empty card name")
	ErrUnknownRewardType = errors.New("unknown reward type")
	ErrNegativeRate      = errors.New("negative reward rate")
	ErrNegativeFee       = errors.New("negative annual fee")
)

func (t RewardType) IsValid() bool {
	return t == Cashback || t == Points
}

// validPreference accepts the empty string as "no preference".
func validPreference(t RewardType) bool {
	return t == "" || t.IsValid()
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyCardID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCardName
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownRewardType, c.Type)
	}
	if c.Rewards.BaseRate < 0 {
		return fmt.Errorf("%w: base rate %v", ErrNegativeRate, c.Rewards.BaseRate)
	}
	for name, rate := range c.Rewards.Categories {
		if rate < 0 {
			return fmt.Errorf("%w: category %q rate %v", ErrNegativeRate, name, rate)
		}
	}
	if c.AnnualFee < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeFee, c.AnnualFee)
	}
	return nil
}

// UnmarshalJSON accepts both numeric and textual bonus amounts; issuer
// feeds mix the two ("200" vs "Double cash back first year").
func (b *SignUpBonus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount      json.RawMessage `json:"amount"`
		Requirement string          `json:"requirement"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Requirement = raw.Requirement
	if len(raw.Amount) == 0 || string(raw.Amount) == "null" {
		b.Amount = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Amount, &s); err == nil {
		b.Amount = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Amount, &n); err != nil {
		return fmt.Errorf("sign_up_bonus amount: %w", err)
	}
	b.Amount = n.String()
	return nil
}
