package collector

import (
	"encoding/json"
	"fmt"
	"os"

	"cardcompass/internal/core"
)

// Source describes one place card data comes from. When FeedURL is
// set the collector fetches a JSON array of cards from it; otherwise
// Cards holds a curated static dataset for that issuer.
type Source struct {
	Issuer  string      `json:"issuer"`
	FeedURL string      `json:"feed_url,omitempty"`
	Cards   []core.Card `json:"cards,omitempty"`
}

// LoadSources reads a sources definition file. The file holds a JSON
// array of Source objects.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var sources []Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}
	for i, s := range sources {
		if s.Issuer == "" {
			return nil, fmt.Errorf("sources file %s: source %d missing issuer", path, i)
		}
	}
	return sources, nil
}

// DefaultSources returns the built-in issuer datasets used when no
// sources file is configured.
func DefaultSources() []Source {
	return []Source{
		{
			Issuer: "chase",
			Cards: []core.Card{
				{
					ID:     "chase_freedom_unlimited",
					Name:   "Chase Freedom Unlimited",
					Issuer: "Chase",
					Type:   core.Cashback,
					Rewards: core.Rewards{
						BaseRate: 1.5,
						Categories: map[string]float64{
							"restaurants": 3.0,
							"drugstores":  3.0,
						},
					},
					AnnualFee: 0,
					SignUpBonus: &core.SignUpBonus{
						Amount:      "200",
						Requirement: "Spend $500 in first 3 months",
					},
				},
				{
					ID:     "chase_sapphire_preferred",
					Name:   "Chase Sapphire Preferred",
					Issuer: "Chase",
					Type:   core.Points,
					Rewards: core.Rewards{
						BaseRate: 1.0,
						Categories: map[string]float64{
							"travel":             2.0,
							"restaurants":        3.0,
							"streaming_services": 3.0,
							"online_shopping":    3.0,
						},
					},
					AnnualFee: 95,
					SignUpBonus: &core.SignUpBonus{
						Amount:      "60000",
						Requirement: "Spend $4,000 in first 3 months",
					},
				},
			},
		},
		{
			Issuer: "discover",
			Cards: []core.Card{
				{
					ID:     "discover_it_cash_back",
					Name:   "Discover it Cash Back",
					Issuer: "Discover",
					Type:   core.Cashback,
					Rewards: core.Rewards{
						BaseRate: 1.0,
						Categories: map[string]float64{
							"groceries":   5.0,
							"gas":         5.0,
							"restaurants": 5.0,
						},
						RotatingSchedule: map[string]string{
							"Q1": "groceries",
							"Q2": "gas",
							"Q3": "restaurants",
							"Q4": "department_stores",
						},
					},
					AnnualFee: 0,
					SignUpBonus: &core.SignUpBonus{
						Amount:      "Cashback Match",
						Requirement: "All cash back earned in the first year is doubled",
					},
				},
			},
		},
		{
			Issuer: "amex",
			Cards: []core.Card{
				{
					ID:     "amex_gold",
					Name:   "American Express Gold Card",
					Issuer: "American Express",
					Type:   core.Points,
					Rewards: core.Rewards{
						BaseRate: 1.0,
						Categories: map[string]float64{
							"restaurants": 4.0,
							"groceries":   4.0,
							"travel":      3.0,
						},
					},
					AnnualFee: 250,
					SignUpBonus: &core.SignUpBonus{
						Amount:      "60000",
						Requirement: "Spend $6,000 in first 6 months",
					},
				},
				{
					ID:     "amex_blue_cash_preferred",
					Name:   "Blue Cash Preferred Card",
					Issuer: "American Express",
					Type:   core.Cashback,
					Rewards: core.Rewards{
						BaseRate: 1.0,
						Categories: map[string]float64{
							"groceries":          6.0,
							"streaming_services": 6.0,
							"gas":                3.0,
						},
					},
					AnnualFee: 95,
					SignUpBonus: &core.SignUpBonus{
						Amount:      "250",
						Requirement: "Spend $3,000 in first 6 months",
					},
				},
			},
		},
		{
			Issuer: "citi",
			Cards: []core.Card{
				{
					ID:   "citi_double_cash",
					Name: "Citi Double Cash Card",
					Issuer: "Citi",
					Type: core.Cashback,
					Rewards: core.Rewards{
						BaseRate: 2.0,
					},
					AnnualFee: 0,
				},
				{
					ID:     "citi_custom_cash",
					Name:   "Citi Custom Cash Card",
					Issuer: "Citi",
					Type:   core.Cashback,
					Rewards: core.Rewards{
						BaseRate: 1.0,
						Categories: map[string]float64{
							"groceries":   5.0,
							"gas":         5.0,
							"restaurants": 5.0,
						},
					},
					AnnualFee: 0,
					SignUpBonus: &core.SignUpBonus{
						Amount:      "200",
						Requirement: "Spend $1,500 in first 6 months",
					},
				},
			},
		},
	}
}
