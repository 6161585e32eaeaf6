package core

import (
	"encoding/json"
	"testing"
)

func TestCardValidate(t *testing.T) {
	good := Card{
		ID:     "chase_freedom_unlimited",
		Name:   "Chase Freedom Unlimited",
		Issuer: "Chase",
		Type:   Cashback,
		Rewards: Rewards{
			BaseRate:   1.5,
			Categories: map[string]float64{"travel": 5},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Card{
		{Name: "n", Type: Cashback},                                                     // empty id
		{ID: "x", Type: Cashback},                                                       // empty name
		{ID: "x", Name: "n", Type: "miles"},                                             // unknown type
		{ID: "x", Name: "n", Type: Points, Rewards: Rewards{BaseRate: -1}},              // negative base
		{ID: "x", Name: "n", Type: Points, Rewards: Rewards{Categories: map[string]float64{"gas": -2}}}, // negative override
		{ID: "x", Name: "n", Type: Cashback, AnnualFee: -95},                            // negative fee
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCardDeserialization(t *testing.T) {
	raw := `{
		"id": "amex_gold",
		"name": "American Express Gold Card",
		"issuer": "American Express",
		"type": "points",
		"rewards": {
			"base_rate": 1,
			"categories": {"dining": 4, "groceries": 4},
			"rotating_schedule": {"Q1": "gas_stations_grocery_stores"}
		},
		"annual_fee": 250,
		"sign_up_bonus": {"amount": 60000, "requirement": "Spend $4,000 in first 6 months"}
	}`
	var c Card
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Rewards.Categories["dining"] != 4 {
		t.Fatalf("dining rate = %v, want 4", c.Rewards.Categories["dining"])
	}
	if c.Rewards.RotatingSchedule["Q1"] == "" {
		t.Fatalf("rotating schedule lost in deserialization")
	}
	if c.SignUpBonus == nil || c.SignUpBonus.Amount != "60000" {
		t.Fatalf("sign-up bonus = %+v, want numeric amount as string", c.SignUpBonus)
	}
}

func TestSignUpBonusAmountForms(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"amount": 200, "requirement": "r"}`, "200"},
		{`{"amount": "Double cash back first year", "requirement": "r"}`, "Double cash back first year"},
		{`{"requirement": "r"}`, ""},
	}
	for i, tc := range cases {
		var b SignUpBonus
		if err := json.Unmarshal([]byte(tc.raw), &b); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if b.Amount != tc.want {
			t.Fatalf("case %d: amount = %q, want %q", i, b.Amount, tc.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		known bool
	}{
		{"groceries", "groceries", true},
		{"Supermarkets", "groceries", true},
		{"gas_stations", "gas", true},
		{"dining", "restaurants", true},
		{" travel ", "travel", true},
		{"entertainment", "entertainment", true},
		{"crypto_mining", "crypto_mining", false},
	}
	for _, tc := range cases {
		got, known := NormalizeCategory(tc.in)
		if got != tc.want || known != tc.known {
			t.Fatalf("NormalizeCategory(%q) = %q, %v; want %q, %v", tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestCanonicalCategoriesIsACopy(t *testing.T) {
	a := CanonicalCategories()
	a[0] = "tampered"
	b := CanonicalCategories()
	if b[0] != "groceries" {
		t.Fatalf("canonical list mutated through returned slice")
	}
}
