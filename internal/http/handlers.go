package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cardcompass/internal/catalog"
	"cardcompass/internal/catalog/file"
	"cardcompass/internal/core"
)

const cardsCacheKey = "available_cards"

// handleCards lists the available card catalog. Listings are cached
// briefly; mutations go through the refresh pipeline which invalidates.
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if cards, ok := s.cardsCache.Get(cardsCacheKey); ok {
		respondJSON(w, http.StatusOK, cards)
		return
	}

	cards, err := s.cards.ListCards(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list cards", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}
	s.cardsCache.Set(cardsCacheKey, cards)
	respondJSON(w, http.StatusOK, cards)
}

func (s *Server) handleUserCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listUserCards(w, r)
	case http.MethodPost:
		s.addUserCard(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listUserCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.userCards.ListUserCards(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list user cards", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list your cards")
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

func (s *Server) addUserCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardID string `json:"card_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CardID = strings.TrimSpace(req.CardID)
	if req.CardID == "" {
		respondError(w, http.StatusBadRequest, "card_id is required")
		return
	}

	card, err := s.userCards.AddUserCard(r.Context(), req.CardID)
	switch {
	case errors.Is(err, catalog.ErrCardNotFound):
		respondError(w, http.StatusNotFound, "card not found in catalog")
		return
	case errors.Is(err, catalog.ErrDuplicateCard):
		respondError(w, http.StatusConflict, "card already in your collection")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to add user card", "card_id", req.CardID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to add card")
		return
	}

	slog.InfoContext(r.Context(), "User card added", "card_id", card.ID)
	respondJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUserCardByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	cardID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/user/cards/"))
	if cardID == "" || strings.Contains(cardID, "/") {
		respondError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	err := s.userCards.RemoveUserCard(r.Context(), cardID)
	switch {
	case errors.Is(err, catalog.ErrCardNotFound):
		respondError(w, http.StatusNotFound, "card not in your collection")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to remove user card", "card_id", cardID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to remove card")
		return
	}

	slog.InfoContext(r.Context(), "User card removed", "card_id", cardID)
	respondJSON(w, http.StatusOK, map[string]string{"removed": cardID})
}

// optimizeRequest is the wire shape of an optimization call. Category
// names are normalized before the engine sees them, so clients may send
// synonyms like "dining" or "supermarkets".
type optimizeRequest struct {
	MonthlySpending map[string]float64 `json:"monthly_spending"`
	Preference      core.RewardType    `json:"preference,omitempty"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spending := make(map[string]float64, len(req.MonthlySpending))
	for name, amount := range req.MonthlySpending {
		canonical, known := core.NormalizeCategory(name)
		if !known {
			// Unknown categories fall through untouched; the engine
			// skips anything outside the canonical list.
			canonical = name
		}
		spending[canonical] += amount
	}

	owned, err := s.userCards.ListUserCards(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load user cards for optimization", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load your cards")
		return
	}
	categories, err := s.categories.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load categories", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	result, err := core.Optimize(owned, core.SpendingRequest{
		Categories: spending,
		Preference: req.Preference,
	}, categories, s.recCfg)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Optimization failed", "error", err)
		respondError(w, http.StatusInternalServerError, "optimization failed")
		return
	}

	// With catalog context available, recompute recommendations so the
	// sign-up bonus rule can see unowned cards.
	if available, err := s.cards.ListCards(r.Context()); err == nil {
		result.Recommendations = s.recCfg.Recommend(owned, available, result.Breakdown, result.Total.Monthly)
	} else {
		slog.WarnContext(r.Context(), "Catalog unavailable for recommendations", "error", err)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	categories, err := s.categories.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := s.prefs.Load()
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to load preferences", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to load preferences")
			return
		}
		respondJSON(w, http.StatusOK, prefs)
	case http.MethodPut:
		var prefs file.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.prefs.Save(prefs); err != nil {
			if errors.Is(err, core.ErrInvalidInput) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Failed to save preferences", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to save preferences")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

// handleRefresh triggers a catalog re-collection. With a broker
// configured the request is queued and answered 202; otherwise the
// collector runs inline.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	source := strings.TrimSpace(r.URL.Query().Get("source"))

	if s.publisher != nil {
		if err := s.publisher.PublishCatalogRefresh(r.Context(), source); err != nil {
			slog.ErrorContext(r.Context(), "Failed to queue catalog refresh", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to queue refresh")
			return
		}
		s.cardsCache.Delete(cardsCacheKey)
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	if s.coll == nil {
		respondError(w, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()
	if err := s.coll.Run(ctx, s.replacer, source); err != nil {
		slog.ErrorContext(r.Context(), "Inline catalog refresh failed", "error", err)
		respondError(w, http.StatusBadGateway, "catalog refresh failed")
		return
	}
	s.cardsCache.Delete(cardsCacheKey)
	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
