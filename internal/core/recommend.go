package core

import (
	"fmt"
	"sort"
	"strings"
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type (
	Priority string

	// Recommendation is a human-readable suggestion. Kind is a stable
	// machine identifier for the rule that produced it.
	Recommendation struct {
		Kind        string   `json:"type"`
		Priority    Priority `json:"priority"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
	}

	// RecommendationConfig holds the heuristic thresholds. BaselineRate
	// is the rate (percent for cashback, points-per-dollar for points)
	// a card must beat for a category to count as covered.
	// MonthlyRewardTarget is the monthly reward above which the user
	// gets an acknowledgment instead of a coverage nudge.
	RecommendationConfig struct {
		BaselineRate        float64
		MonthlyRewardTarget float64
	}
)

// DefaultRecommendationConfig returns the stock thresholds: a 1% / 1x
// baseline and a 50-unit monthly target.
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{BaselineRate: 1, MonthlyRewardTarget: 50}
}

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Recommend applies the rule set in order, each rule emitting at most
// one recommendation, then sorts highest priority first. The sort is
// stable, so equal-priority items keep rule-evaluation order. available
// may be nil when the caller has no catalog context; the sign-up bonus
// rule is skipped then.
func (cfg RecommendationConfig) Recommend(owned, available []Card, breakdown []CategoryResult, monthlyTotal float64) []Recommendation {
	var recs []Recommendation

	if len(owned) == 0 {
		recs = append(recs, Recommendation{
			Kind:        "first_card",
			Priority:    PriorityLow,
			Title:       "Add your first card",
			Description: "Add the credit cards you own to see which one to use for each spending category.",
		})
	}

	if weak := cfg.weakCategories(owned, breakdown); len(weak) > 0 {
		recs = append(recs, Recommendation{
			Kind:        "missing_categories",
			Priority:    PriorityMedium,
			Title:       "Consider cards for high-spend categories",
			Description: "You could earn more rewards in: " + strings.Join(weak, ", "),
		})
	}

	if monthlyTotal > cfg.MonthlyRewardTarget {
		recs = append(recs, Recommendation{
			Kind:        "on_track",
			Priority:    PriorityHigh,
			Title:       "You're earning solid rewards",
			Description: fmt.Sprintf("Your cards are projected to earn %.2f per month. Keep routing spend through the category winners.", monthlyTotal),
		})
	} else {
		recs = append(recs, Recommendation{
			Kind:        "coverage",
			Priority:    PriorityMedium,
			Title:       "Increase your category coverage",
			Description: "Your projected monthly reward is modest. Cards with stronger category rates would lift it.",
		})
	}

	if hasRotatingCard(owned) {
		recs = append(recs, Recommendation{
			Kind:        "rotating",
			Priority:    PriorityLow,
			Title:       "Check this quarter's rotating categories",
			Description: "One of your cards has quarterly bonus categories. Make sure they are activated and matched to your spend.",
		})
	}

	if bonus := firstUnownedBonus(owned, available); bonus != nil {
		recs = append(recs, Recommendation{
			Kind:        "signup_bonus",
			Priority:    PriorityLow,
			Title:       "New card opportunities",
			Description: fmt.Sprintf("%s offers a sign-up bonus (%s). Consider it if you can meet: %s.", bonus.Name, bonus.SignUpBonus.Amount, bonus.SignUpBonus.Requirement),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

// weakCategories lists breakdown categories where no owned card resolves
// to a rate above the baseline, in breakdown (canonical) order.
func (cfg RecommendationConfig) weakCategories(owned []Card, breakdown []CategoryResult) []string {
	if len(owned) == 0 {
		return nil
	}
	var weak []string
	for _, row := range breakdown {
		covered := false
		for _, card := range owned {
			if ResolveRate(card, row.Category) > cfg.BaselineRate {
				covered = true
				break
			}
		}
		if !covered {
			weak = append(weak, row.Category)
		}
	}
	return weak
}

func hasRotatingCard(owned []Card) bool {
	for _, c := range owned {
		if len(c.Rewards.RotatingSchedule) > 0 {
			return true
		}
	}
	return false
}

// firstUnownedBonus returns the first catalog card with a sign-up bonus
// the user does not already own.
func firstUnownedBonus(owned, available []Card) *Card {
	ownedIDs := make(map[string]struct{}, len(owned))
	for _, c := range owned {
		ownedIDs[c.ID] = struct{}{}
	}
	for i := range available {
		c := &available[i]
		if c.SignUpBonus == nil {
			continue
		}
		if _, ok := ownedIDs[c.ID]; ok {
			continue
		}
		return c
	}
	return nil
}
