package core

// ResolveRate returns the effective reward rate a card applies to a
// category: the category override when one is defined, otherwise the
// base rate. Matching is exact and case-sensitive; callers normalize
// category names first. Total function, always >= 0 for a valid card.
func ResolveRate(card Card, category string) float64 {
	if rate, ok := card.Rewards.Categories[category]; ok {
		return rate
	}
	return card.Rewards.BaseRate
}

// rewardFor computes the reward earned by spending amount in a category
// with the given card. Cashback rates are percentages of spend, points
// rates are points per currency unit.
func rewardFor(card Card, category string, amount float64) float64 {
	rate := ResolveRate(card, category)
	if card.Type == Cashback {
		return amount * rate / 100
	}
	return amount * rate
}
