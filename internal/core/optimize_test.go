package core

import (
	"errors"
	"reflect"
	"testing"
)

func cashbackCard(id string, base float64, cats map[string]float64) Card {
	return Card{ID: id, Name: id, Issuer: "Test", Type: Cashback, Rewards: Rewards{BaseRate: base, Categories: cats}}
}

func pointsCard(id string, base float64, cats map[string]float64) Card {
	return Card{ID: id, Name: id, Issuer: "Test", Type: Points, Rewards: Rewards{BaseRate: base, Categories: cats}}
}

func TestResolveRate(t *testing.T) {
	card := cashbackCard("A", 1, map[string]float64{"groceries": 3})

	cases := []struct {
		category string
		want     float64
	}{
		{"groceries", 3},
		{"gas", 1},
		{"Groceries", 1}, // exact match only, no case folding
		{"", 1},
	}
	for _, tc := range cases {
		if got := ResolveRate(card, tc.category); got != tc.want {
			t.Fatalf("ResolveRate(%q) = %v, want %v", tc.category, got, tc.want)
		}
	}
}

func TestOptimizeSingleCashbackCard(t *testing.T) {
	owned := []Card{cashbackCard("A", 1, map[string]float64{"groceries": 3})}
	req := SpendingRequest{Categories: map[string]float64{"groceries": 800}}

	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Breakdown) != 1 {
		t.Fatalf("breakdown length = %d, want 1", len(res.Breakdown))
	}
	row := res.Breakdown[0]
	if row.Card == nil || row.Card.ID != "A" {
		t.Fatalf("chosen card = %+v, want A", row.Card)
	}
	if row.Reward != 24.00 {
		t.Fatalf("reward = %v, want 24.00", row.Reward)
	}
	if res.Total.Monthly != 24.00 || res.Total.Annual != 288.00 {
		t.Fatalf("totals = %v/%v, want 24.00/288.00", res.Total.Monthly, res.Total.Annual)
	}
	if res.Total.Type != Cashback {
		t.Fatalf("total type = %q, want cashback", res.Total.Type)
	}
}

func TestOptimizePreferenceFiltersEligibleCards(t *testing.T) {
	owned := []Card{
		pointsCard("A", 1, map[string]float64{"travel": 2}),
		cashbackCard("B", 2, nil),
	}
	req := SpendingRequest{
		Categories: map[string]float64{"travel": 500},
		Preference: Cashback,
	}

	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := res.Breakdown[0]
	// Card A would earn 1000 points, but a cashback card is owned, so
	// only B is eligible.
	if row.Card == nil || row.Card.ID != "B" {
		t.Fatalf("chosen card = %+v, want B", row.Card)
	}
	if row.Reward != 10.00 {
		t.Fatalf("reward = %v, want 10.00", row.Reward)
	}
}

func TestOptimizePreferenceFallsBackWhenNoMatch(t *testing.T) {
	owned := []Card{pointsCard("A", 2, nil)}
	req := SpendingRequest{
		Categories: map[string]float64{"gas": 100},
		Preference: Cashback,
	}

	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := res.Breakdown[0]
	if row.Card == nil || row.Card.ID != "A" {
		t.Fatalf("chosen card = %+v, want fallback to A", row.Card)
	}
	if row.Reward != 200 || row.RewardType != Points {
		t.Fatalf("reward = %v (%s), want 200 points", row.Reward, row.RewardType)
	}
}

func TestOptimizeNoOwnedCards(t *testing.T) {
	req := SpendingRequest{Categories: map[string]float64{"groceries": 100}}

	res, err := Optimize(nil, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := res.Breakdown[0]
	if row.Card != nil {
		t.Fatalf("expected no eligible card, got %+v", row.Card)
	}
	if row.Reward != 0 || res.Total.Monthly != 0 {
		t.Fatalf("rewards should be zero, got row=%v total=%v", row.Reward, res.Total.Monthly)
	}

	found := false
	for _, rec := range res.Recommendations {
		if rec.Kind == "first_card" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected first_card recommendation, got %+v", res.Recommendations)
	}
}

func TestOptimizeRejectsEmptySpending(t *testing.T) {
	cases := []map[string]float64{
		nil,
		{},
		{"groceries": 0},
		{"groceries": -5, "gas": 0},
	}
	for i, categories := range cases {
		_, err := Optimize(nil, SpendingRequest{Categories: categories}, CanonicalCategories(), DefaultRecommendationConfig())
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestOptimizeRejectsUnknownPreference(t *testing.T) {
	req := SpendingRequest{
		Categories: map[string]float64{"gas": 50},
		Preference: RewardType("miles"),
	}
	_, err := Optimize(nil, req, CanonicalCategories(), DefaultRecommendationConfig())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestBestCardTieGoesToFirstOwned(t *testing.T) {
	owned := []Card{
		cashbackCard("first", 2, nil),
		cashbackCard("second", 2, nil),
	}
	best, reward := BestCard(owned, "gas", 100, "")
	if best == nil || best.ID != "first" {
		t.Fatalf("tie break chose %+v, want first", best)
	}
	if reward != 2 {
		t.Fatalf("reward = %v, want 2", reward)
	}
}

func TestBestCardBeatsAllOthers(t *testing.T) {
	owned := []Card{
		cashbackCard("a", 1, map[string]float64{"travel": 2}),
		cashbackCard("b", 1.5, nil),
		cashbackCard("c", 1, map[string]float64{"travel": 4}),
	}
	best, reward := BestCard(owned, "travel", 200, "")
	if best == nil || best.ID != "c" {
		t.Fatalf("chose %+v, want c", best)
	}
	for _, card := range owned {
		if other := rewardFor(card, "travel", 200); other > reward {
			t.Fatalf("card %s yields %v > selected %v", card.ID, other, reward)
		}
	}
}

func TestOptimizeUnknownCategoriesIgnored(t *testing.T) {
	owned := []Card{cashbackCard("A", 1, nil)}
	req := SpendingRequest{Categories: map[string]float64{
		"groceries":     100,
		"crypto_mining": 900,
	}}
	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Breakdown) != 1 || res.Breakdown[0].Category != "groceries" {
		t.Fatalf("breakdown = %+v, want only groceries", res.Breakdown)
	}
}

func TestOptimizeBreakdownFollowsCanonicalOrder(t *testing.T) {
	owned := []Card{cashbackCard("A", 1, nil)}
	req := SpendingRequest{Categories: map[string]float64{
		"phone_bill": 40,
		"groceries":  100,
		"travel":     300,
	}}
	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, 0, len(res.Breakdown))
	for _, row := range res.Breakdown {
		got = append(got, row.Category)
	}
	want := []string{"groceries", "travel", "phone_bill"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("breakdown order = %v, want %v", got, want)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	owned := []Card{
		cashbackCard("A", 1.5, map[string]float64{"groceries": 3}),
		pointsCard("B", 1, map[string]float64{"travel": 2}),
	}
	req := SpendingRequest{Categories: map[string]float64{
		"groceries": 431.17,
		"travel":    250,
		"gas":       80,
	}}

	first, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between identical runs:\n%+v\n%+v", first, second)
	}
}

func TestOptimizeAnnualIsTwelveTimesMonthly(t *testing.T) {
	owned := []Card{
		cashbackCard("A", 1.5, map[string]float64{"groceries": 3.33}),
		pointsCard("B", 1.2, nil),
	}
	req := SpendingRequest{Categories: map[string]float64{
		"groceries":   123.45,
		"gas":         67.89,
		"travel":      500,
		"utilities":   42,
		"restaurants": 88.8,
	}}
	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checks := []struct {
		name            string
		monthly, annual float64
	}{
		{"cashback", res.CashbackMonthly, res.CashbackAnnual},
		{"points", res.PointsMonthly, res.PointsAnnual},
		{"total", res.Total.Monthly, res.Total.Annual},
	}
	for _, c := range checks {
		if c.annual != Round2(c.monthly*12) {
			t.Fatalf("%s annual = %v, want %v", c.name, c.annual, Round2(c.monthly*12))
		}
	}
}

func TestOptimizeSplitTotalsAcrossTypes(t *testing.T) {
	owned := []Card{
		cashbackCard("cash", 2, nil),
		pointsCard("pts", 1, map[string]float64{"travel": 5}),
	}
	req := SpendingRequest{Categories: map[string]float64{
		"groceries": 100, // cash wins: 2.00 cashback
		"travel":    100, // pts wins: 500 points
	}}
	res, err := Optimize(owned, req, CanonicalCategories(), DefaultRecommendationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CashbackMonthly != 2.00 {
		t.Fatalf("cashback monthly = %v, want 2.00", res.CashbackMonthly)
	}
	if res.PointsMonthly != 500 {
		t.Fatalf("points monthly = %v, want 500", res.PointsMonthly)
	}
	// No preference and cashback was earned, so the headline shows it.
	if res.Total.Type != Cashback || res.Total.Monthly != 2.00 {
		t.Fatalf("headline = %v %s, want 2.00 cashback", res.Total.Monthly, res.Total.Type)
	}
}
