package core

import "testing"

func TestRecommendNoCards(t *testing.T) {
	cfg := DefaultRecommendationConfig()
	recs := cfg.Recommend(nil, nil, nil, 0)

	if len(recs) == 0 {
		t.Fatalf("expected recommendations for empty collection")
	}
	var kinds []string
	for _, r := range recs {
		kinds = append(kinds, r.Kind)
	}
	if !containsKind(recs, "first_card") {
		t.Fatalf("missing first_card recommendation, got %v", kinds)
	}
	if !containsKind(recs, "coverage") {
		t.Fatalf("missing coverage nudge, got %v", kinds)
	}
}

func TestRecommendWeakCategories(t *testing.T) {
	owned := []Card{cashbackCard("A", 1, map[string]float64{"groceries": 3})}
	breakdown := []CategoryResult{
		{Category: "groceries", Amount: 100},
		{Category: "gas", Amount: 100},
		{Category: "travel", Amount: 100},
	}
	cfg := DefaultRecommendationConfig()
	recs := cfg.Recommend(owned, nil, breakdown, 5)

	var missing *Recommendation
	for i := range recs {
		if recs[i].Kind == "missing_categories" {
			missing = &recs[i]
		}
	}
	if missing == nil {
		t.Fatalf("expected missing_categories recommendation, got %+v", recs)
	}
	if missing.Priority != PriorityMedium {
		t.Fatalf("priority = %s, want medium", missing.Priority)
	}
	// groceries resolves to 3 (> baseline 1), gas and travel only to 1.
	want := "You could earn more rewards in: gas, travel"
	if missing.Description != want {
		t.Fatalf("description = %q, want %q", missing.Description, want)
	}
}

func TestRecommendMonthlyTargetSwitchesTone(t *testing.T) {
	owned := []Card{cashbackCard("A", 2, nil)}
	cfg := DefaultRecommendationConfig()

	above := cfg.Recommend(owned, nil, nil, 75)
	if !containsKind(above, "on_track") {
		t.Fatalf("expected on_track above target, got %+v", above)
	}
	if above[0].Priority != PriorityHigh {
		t.Fatalf("high priority items must sort first, got %+v", above[0])
	}

	below := cfg.Recommend(owned, nil, nil, 10)
	if containsKind(below, "on_track") || !containsKind(below, "coverage") {
		t.Fatalf("expected coverage nudge below target, got %+v", below)
	}
}

func TestRecommendRotatingAndSignupSupplements(t *testing.T) {
	rotating := Card{
		ID: "disc", Name: "Discover it", Issuer: "Discover", Type: Cashback,
		Rewards: Rewards{BaseRate: 1, RotatingSchedule: map[string]string{"Q1": "gas_stations_grocery_stores"}},
	}
	catalog := []Card{
		{ID: "disc", Name: "Discover it", Issuer: "Discover", Type: Cashback, Rewards: Rewards{BaseRate: 1}},
		{
			ID: "amex_gold", Name: "American Express Gold Card", Issuer: "American Express", Type: Points,
			Rewards:     Rewards{BaseRate: 1},
			SignUpBonus: &SignUpBonus{Amount: "60000", Requirement: "Spend $4,000 in first 6 months"},
		},
	}
	cfg := DefaultRecommendationConfig()
	recs := cfg.Recommend([]Card{rotating}, catalog, nil, 100)

	if !containsKind(recs, "rotating") {
		t.Fatalf("expected rotating reminder, got %+v", recs)
	}
	if !containsKind(recs, "signup_bonus") {
		t.Fatalf("expected signup_bonus suggestion, got %+v", recs)
	}
	// Owned cards never trigger the sign-up rule.
	recs = cfg.Recommend(catalog, catalog[:1], nil, 100)
	if containsKind(recs, "signup_bonus") {
		t.Fatalf("owned card produced signup_bonus: %+v", recs)
	}
}

func TestRecommendOrderedByPriority(t *testing.T) {
	cfg := DefaultRecommendationConfig()
	recs := cfg.Recommend(nil, nil, nil, 100)
	last := 0
	for _, r := range recs {
		rank := priorityRank[r.Priority]
		if rank < last {
			t.Fatalf("recommendations out of priority order: %+v", recs)
		}
		last = rank
	}
}

func containsKind(recs []Recommendation, kind string) bool {
	for _, r := range recs {
		if r.Kind == kind {
			return true
		}
	}
	return false
}
