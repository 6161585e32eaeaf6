package file

import "cardcompass/internal/core"

// seedCards is the default catalog written on first start, before any
// collector run has replaced it.
func seedCards() []core.Card {
	return []core.Card{
		{
			ID:     "chase_freedom_unlimited",
			Name:   "Chase Freedom Unlimited",
			Issuer: "Chase",
			Type:   core.Cashback,
			Rewards: core.Rewards{
				BaseRate:   1.5,
				Categories: map[string]float64{"all_purchases": 1.5},
			},
			AnnualFee:   0,
			SignUpBonus: &core.SignUpBonus{Amount: "200", Requirement: "Spend $500 in first 3 months"},
		},
		{
			ID:     "chase_sapphire_preferred",
			Name:   "Chase Sapphire Preferred",
			Issuer: "Chase",
			Type:   core.Points,
			Rewards: core.Rewards{
				BaseRate: 1,
				Categories: map[string]float64{
					"travel":        2,
					"restaurants":   2,
					"all_purchases": 1,
				},
			},
			AnnualFee:   95,
			SignUpBonus: &core.SignUpBonus{Amount: "60000", Requirement: "Spend $4,000 in first 3 months"},
		},
		{
			ID:     "discover_it_cash_back",
			Name:   "Discover it Cash Back",
			Issuer: "Discover",
			Type:   core.Cashback,
			Rewards: core.Rewards{
				BaseRate:   1,
				Categories: map[string]float64{"all_purchases": 1},
				RotatingSchedule: map[string]string{
					"Q1": "gas_stations_grocery_stores",
					"Q2": "restaurants_paypal_gas_stations",
					"Q3": "walmart_drugstores",
					"Q4": "amazon_target",
				},
			},
			AnnualFee:   0,
			SignUpBonus: &core.SignUpBonus{Amount: "Double cash back first year", Requirement: "No minimum spend"},
		},
		{
			ID:     "amex_gold",
			Name:   "American Express Gold Card",
			Issuer: "American Express",
			Type:   core.Points,
			Rewards: core.Rewards{
				BaseRate: 1,
				Categories: map[string]float64{
					"restaurants":   4,
					"groceries":     4,
					"all_purchases": 1,
				},
			},
			AnnualFee:   250,
			SignUpBonus: &core.SignUpBonus{Amount: "60000", Requirement: "Spend $4,000 in first 6 months"},
		},
	}
}
