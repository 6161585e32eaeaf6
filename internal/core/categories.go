package core

import "strings"

// canonicalCategories is the fixed spending-category enumeration. The
// order here is the order breakdowns are reported in, regardless of
// request payload field order.
var canonicalCategories = []string{
	"groceries",
	"gas",
	"restaurants",
	"travel",
	"online_shopping",
	"department_stores",
	"utilities",
	"insurance",
	"entertainment",
	"streaming_services",
	"phone_bill",
	"other",
}

// categoryAliases maps issuer-side category labels to canonical names.
// Normalization happens before optimization so rate resolution stays an
// exact string match.
var categoryAliases = map[string]string{
	"grocery_stores":     "groceries",
	"supermarkets":       "groceries",
	"gas_stations":       "gas",
	"fuel":               "gas",
	"dining":             "restaurants",
	"food":               "restaurants",
	"airlines":           "travel",
	"hotels":             "travel",
	"car_rental":         "travel",
	"online":             "online_shopping",
	"e_commerce":         "online_shopping",
	"amazon":             "online_shopping",
	"retail":             "department_stores",
	"bills":              "utilities",
	"streaming":          "streaming_services",
	"phone":              "phone_bill",
	"telecommunications": "phone_bill",
}

// CanonicalCategories returns a copy of the fixed category enumeration.
func CanonicalCategories() []string {
	return append([]string(nil), canonicalCategories...)
}

// NormalizeCategory maps a raw category label to its canonical name.
// The second return is false when the label is not a canonical category
// or a known alias.
func NormalizeCategory(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, c := range canonicalCategories {
		if n == c {
			return c, true
		}
	}
	if c, ok := categoryAliases[n]; ok {
		return c, true
	}
	return n, false
}
