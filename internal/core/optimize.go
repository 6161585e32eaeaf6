package core

import (
	"fmt"
	"math"
)

type (
	// CategoryResult is one row of the per-category breakdown. Card is
	// nil when no owned card was eligible for the category.
	CategoryResult struct {
		Category   string     `json:"category"`
		Amount     float64    `json:"amount"`
		Card       *Card      `json:"best_card,omitempty"`
		Reward     float64    `json:"reward_amount"`
		RewardType RewardType `json:"reward_type,omitempty"`
	}

	// TotalReward is the single headline figure derived from the two
	// per-type running sums. Type names the unit of Monthly/Annual.
	TotalReward struct {
		Monthly float64    `json:"monthly"`
		Annual  float64    `json:"annual"`
		Type    RewardType `json:"type"`
	}

	// OptimizationResult is recomputed fresh on every request and never
	// persisted. Cashback and points totals are tracked separately since
	// each category may be won by a card of either type.
	OptimizationResult struct {
		CashbackMonthly float64          `json:"cashback_monthly"`
		CashbackAnnual  float64          `json:"cashback_annual"`
		PointsMonthly   float64          `json:"points_monthly"`
		PointsAnnual    float64          `json:"points_annual"`
		Total           TotalReward      `json:"total"`
		Breakdown       []CategoryResult `json:"category_breakdown"`
		Recommendations []Recommendation `json:"recommendations"`
	}
)

// BestCard picks the owned card maximizing the reward for one category's
// spend. When a preference is given and at least one owned card matches
// it, only matching cards are eligible; otherwise all owned cards are
// considered. Ties go to the card appearing first in the owned list.
// Returns (nil, 0) when the owned list is empty.
func BestCard(owned []Card, category string, amount float64, preference RewardType) (*Card, float64) {
	candidates := filterByPreference(owned, preference)

	var best *Card
	var bestReward float64
	for i := range candidates {
		reward := rewardFor(candidates[i], category, amount)
		if best == nil || reward > bestReward {
			best = &candidates[i]
			bestReward = reward
		}
	}
	return best, bestReward
}

// filterByPreference keeps cards matching the preferred reward type,
// falling back to the full list when none match. The fall-back keeps an
// owner of only points cards from getting empty results on a cashback
// request.
func filterByPreference(cards []Card, preference RewardType) []Card {
	if preference == "" {
		return cards
	}
	var matching []Card
	for _, c := range cards {
		if c.Type == preference {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return cards
	}
	return matching
}

// Optimize assigns each category with positive spend to the owned card
// yielding the highest reward and aggregates monthly and annual totals.
// Categories are processed in the order of the canonical category list,
// so results are deterministic for identical inputs. Unknown category
// names in the request are silently ignored.
func Optimize(owned []Card, req SpendingRequest, categories []string, cfg RecommendationConfig) (*OptimizationResult, error) {
	if !validPreference(req.Preference) {
		return nil, fmt.Errorf("%w: unknown preference %q", ErrInvalidInput, req.Preference)
	}
	positive := 0
	for _, amount := range req.Categories {
		if amount > 0 {
			positive++
		}
	}
	if positive == 0 {
		return nil, fmt.Errorf("%w: no categories with positive spend", ErrInvalidInput)
	}

	var (
		breakdown   []CategoryResult
		cashbackSum float64
		pointsSum   float64
	)
	for _, category := range categories {
		amount, ok := req.Categories[category]
		if !ok || amount <= 0 {
			continue
		}

		best, reward := BestCard(owned, category, amount, req.Preference)
		row := CategoryResult{
			Category: category,
			Amount:   amount,
			Card:     best,
			Reward:   Round2(reward),
		}
		if best != nil {
			row.RewardType = best.Type
			// Full precision feeds the sums; rounding is display only.
			switch best.Type {
			case Cashback:
				cashbackSum += reward
			case Points:
				pointsSum += reward
			}
		}
		breakdown = append(breakdown, row)
	}

	// Round the monthly figures first so every annual projection is
	// exactly twelve times its displayed monthly counterpart.
	cashbackMonthly := Round2(cashbackSum)
	pointsMonthly := Round2(pointsSum)
	result := &OptimizationResult{
		CashbackMonthly: cashbackMonthly,
		CashbackAnnual:  Round2(cashbackMonthly * 12),
		PointsMonthly:   pointsMonthly,
		PointsAnnual:    Round2(pointsMonthly * 12),
		Breakdown:       breakdown,
	}
	result.Total = headlineTotal(req.Preference, cashbackSum, pointsSum)
	result.Recommendations = cfg.Recommend(owned, nil, breakdown, result.Total.Monthly)
	return result, nil
}

// headlineTotal collapses the two running sums into the single figure a
// dashboard displays. A stated preference picks that type's sum. With no
// preference the cashback sum wins whenever any category paid cashback;
// otherwise the points sum is shown. Both sums remain available on the
// result either way.
func headlineTotal(preference RewardType, cashbackSum, pointsSum float64) TotalReward {
	t := preference
	if t == "" {
		if cashbackSum > 0 || pointsSum == 0 {
			t = Cashback
		} else {
			t = Points
		}
	}
	sum := cashbackSum
	if t == Points {
		sum = pointsSum
	}
	monthly := Round2(sum)
	return TotalReward{Monthly: monthly, Annual: Round2(monthly * 12), Type: t}
}

// Round2 rounds to two decimals for display. Intermediate sums are kept
// at full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
