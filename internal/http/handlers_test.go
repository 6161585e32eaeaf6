package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardcompass/internal/catalog/file"
	"cardcompass/internal/core"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	prefs, err := file.NewPreferenceStore(dir)
	if err != nil {
		t.Fatalf("preference store: %v", err)
	}
	srv := NewServer(":0", store, prefs, nil, nil, core.DefaultRecommendationConfig())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("request failed: %s", envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/health", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestListCards(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/api/v1/cards", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var cards []core.Card
	decodeData(t, rr, &cards)
	if len(cards) == 0 {
		t.Fatal("expected seeded catalog cards")
	}

	// Second call should come from cache and agree.
	rr2 := do(t, srv, http.MethodGet, "/api/v1/cards", "")
	var cards2 []core.Card
	decodeData(t, rr2, &cards2)
	if len(cards2) != len(cards) {
		t.Errorf("cached listing differs: %d vs %d", len(cards2), len(cards))
	}
}

func TestUserCardLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/v1/user/cards", "")
	var owned []core.Card
	decodeData(t, rr, &owned)
	if len(owned) != 0 {
		t.Fatalf("expected empty collection, got %d", len(owned))
	}

	rr = do(t, srv, http.MethodPost, "/api/v1/user/cards", `{"card_id":"chase_freedom_unlimited"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Duplicate add conflicts.
	rr = do(t, srv, http.MethodPost, "/api/v1/user/cards", `{"card_id":"chase_freedom_unlimited"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate add status=%d", rr.Code)
	}

	// Unknown catalog id.
	rr = do(t, srv, http.MethodPost, "/api/v1/user/cards", `{"card_id":"no_such_card"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown add status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/v1/user/cards/chase_freedom_unlimited", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("remove status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodDelete, "/api/v1/user/cards/chase_freedom_unlimited", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second remove status=%d", rr.Code)
	}
}

func TestAddUserCardValidation(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/v1/user/cards", `{"card_id":"  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank id status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodPost, "/api/v1/user/cards", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad json status=%d", rr.Code)
	}
}

func TestOptimizeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/v1/user/cards", `{"card_id":"chase_freedom_unlimited"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/v1/optimize",
		`{"monthly_spending":{"dining":200,"groceries":400}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("optimize status=%d body=%s", rr.Code, rr.Body.String())
	}
	var result core.OptimizationResult
	decodeData(t, rr, &result)

	if result.Total.Monthly <= 0 {
		t.Errorf("monthly total = %v, want positive", result.Total.Monthly)
	}
	if result.Total.Annual != core.Round2(result.Total.Monthly*12) {
		t.Errorf("annual %v is not 12x monthly %v", result.Total.Annual, result.Total.Monthly)
	}
	// "dining" must have been normalized into the restaurants row.
	foundRestaurants := false
	for _, row := range result.Breakdown {
		if row.Category == "restaurants" {
			foundRestaurants = true
			if row.Amount != 200 {
				t.Errorf("restaurants amount = %v, want 200", row.Amount)
			}
		}
		if row.Category == "dining" {
			t.Error("raw synonym dining leaked into breakdown")
		}
	}
	if !foundRestaurants {
		t.Error("no restaurants row in breakdown")
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

func TestOptimizeRejectsEmptySpend(t *testing.T) {
	srv := newTestServer(t)
	for _, body := range []string{
		`{"monthly_spending":{}}`,
		`{"monthly_spending":{"groceries":0}}`,
		`{"monthly_spending":{"groceries":-5}}`,
	} {
		rr := do(t, srv, http.MethodPost, "/api/v1/optimize", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status=%d, want 400", body, rr.Code)
		}
	}
}

func TestOptimizeRejectsBadPreference(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/v1/optimize",
		`{"monthly_spending":{"groceries":100},"preference":"miles"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/api/v1/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var categories []string
	decodeData(t, rr, &categories)
	if len(categories) != len(core.CanonicalCategories()) {
		t.Errorf("got %d categories, want %d", len(categories), len(core.CanonicalCategories()))
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPut, "/api/v1/preferences",
		`{"reward_preference":"points","monthly_spending":{"travel":300}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/v1/preferences", "")
	var prefs file.Preferences
	decodeData(t, rr, &prefs)
	if prefs.RewardPreference != core.Points {
		t.Errorf("preference = %q, want points", prefs.RewardPreference)
	}
	if prefs.MonthlySpending["travel"] != 300 {
		t.Errorf("travel spending = %v, want 300", prefs.MonthlySpending["travel"])
	}
}

func TestPreferencesRejectInvalidType(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPut, "/api/v1/preferences", `{"reward_preference":"miles"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestRefreshWithoutPipeline(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/v1/refresh", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", rr.Code)
	}
}

type fakePublisher struct{ sources []string }

func (f *fakePublisher) PublishCatalogRefresh(_ context.Context, source string) error {
	f.sources = append(f.sources, source)
	return nil
}

func TestRefreshQueuesMessage(t *testing.T) {
	dir := t.TempDir()
	store, err := file.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	prefs, err := file.NewPreferenceStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	pub := &fakePublisher{}
	srv := NewServer(":0", store, prefs, pub, nil, core.DefaultRecommendationConfig())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr := do(t, srv, http.MethodPost, "/api/v1/refresh?source=chase", "")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if len(pub.sources) != 1 || pub.sources[0] != "chase" {
		t.Fatalf("published sources = %v", pub.sources)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/cards"},
		{http.MethodDelete, "/api/v1/user/cards"},
		{http.MethodGet, "/api/v1/optimize"},
		{http.MethodPost, "/api/v1/categories"},
		{http.MethodGet, "/api/v1/refresh"},
	}
	for _, tc := range cases {
		rr := do(t, srv, tc.method, tc.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status=%d, want 405", tc.method, tc.path, rr.Code)
		}
	}
}
