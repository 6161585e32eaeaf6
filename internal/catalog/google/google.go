// Package google adapts a Google Sheets spreadsheet as a catalog
// backend. One sheet holds the available cards, one the user's
// collection, and one the category enumeration. Card reward data is
// stored as JSON in a single cell; the flat columns exist so the
// spreadsheet stays readable by hand.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cardcompass/internal/catalog"
	"cardcompass/internal/core"
)

const (
	defaultCardsSheet      = "Cards"
	defaultUserCardsSheet  = "UserCards"
	defaultCategoriesSheet = "Categories"
)

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	cardsSheet      string
	userCardsSheet  string
	categoriesSheet string
}

// Ensure interface conformance
var (
	_ catalog.CardLister      = (*Client)(nil)
	_ catalog.UserCardStore   = (*Client)(nil)
	_ catalog.CatalogReplacer = (*Client)(nil)
	_ catalog.CategoryLister  = (*Client)(nil)
)

// NewFromEnv creates a Sheets-backed catalog using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS).
// Optional sheet names: GOOGLE_CARDS_SHEET_NAME,
// GOOGLE_USER_CARDS_SHEET_NAME, GOOGLE_CATEGORIES_SHEET_NAME.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		cardsSheet:      envOr("GOOGLE_CARDS_SHEET_NAME", defaultCardsSheet),
		userCardsSheet:  envOr("GOOGLE_USER_CARDS_SHEET_NAME", defaultUserCardsSheet),
		categoriesSheet: envOr("GOOGLE_CATEGORIES_SHEET_NAME", defaultCategoriesSheet),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// newSheetsService initializes a Sheets Service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ListCards(ctx context.Context) ([]core.Card, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:F", c.cardsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	cards := make([]core.Card, 0, len(resp.Values))
	for _, row := range resp.Values {
		card, err := parseCardRow(row)
		if err != nil {
			// Skip rows someone edited into an unparsable state.
			continue
		}
		if err := card.Validate(); err != nil {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// parseCardRow reads a Cards sheet row: ID, Name, Issuer, Type,
// AnnualFee, CardJSON. The JSON column is authoritative; the flat
// columns are for human readers.
func parseCardRow(row []any) (core.Card, error) {
	if len(row) < 6 {
		return core.Card{}, fmt.Errorf("short row: %d columns", len(row))
	}
	raw := strings.TrimSpace(fmt.Sprint(row[5]))
	if raw == "" {
		return core.Card{}, errors.New("empty card JSON cell")
	}
	var card core.Card
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return core.Card{}, fmt.Errorf("parse card JSON: %w", err)
	}
	return card, nil
}

func cardToRow(card core.Card) ([]any, error) {
	raw, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("marshal card %s: %w", card.ID, err)
	}
	return []any{
		card.ID,
		card.Name,
		card.Issuer,
		string(card.Type),
		strconv.FormatFloat(card.AnnualFee, 'f', 2, 64),
		string(raw),
	}, nil
}

func (c *Client) ReplaceCards(ctx context.Context, cards []core.Card) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!A2:F", c.cardsSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}
	if len(cards) == 0 {
		return nil
	}

	values := make([][]any, 0, len(cards))
	for _, card := range cards {
		row, err := cardToRow(card)
		if err != nil {
			return err
		}
		values = append(values, row)
	}

	writeRng := fmt.Sprintf("%s!A2:F%d", c.cardsSheet, 1+len(values))
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRng, err)
	}
	return nil
}

func (c *Client) ListUserCards(ctx context.Context) ([]core.Card, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:C", c.userCardsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	cards := make([]core.Card, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) < 2 {
			continue
		}
		raw := strings.TrimSpace(fmt.Sprint(row[1]))
		if raw == "" {
			continue
		}
		var card core.Card
		if err := json.Unmarshal([]byte(raw), &card); err != nil {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (c *Client) AddUserCard(ctx context.Context, cardID string) (core.Card, error) {
	owned, err := c.ListUserCards(ctx)
	if err != nil {
		return core.Card{}, err
	}
	for _, card := range owned {
		if card.ID == cardID {
			return core.Card{}, catalog.ErrDuplicateCard
		}
	}

	available, err := c.ListCards(ctx)
	if err != nil {
		return core.Card{}, err
	}
	var found *core.Card
	for i := range available {
		if available[i].ID == cardID {
			found = &available[i]
			break
		}
	}
	if found == nil {
		return core.Card{}, catalog.ErrCardNotFound
	}

	raw, err := json.Marshal(found)
	if err != nil {
		return core.Card{}, fmt.Errorf("marshal card %s: %w", cardID, err)
	}
	vr := &gsheet.ValueRange{Values: [][]any{{
		found.ID,
		string(raw),
		time.Now().UTC().Format(time.RFC3339),
	}}}
	appendRng := fmt.Sprintf("%s!A:C", c.userCardsSheet)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, appendRng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return core.Card{}, fmt.Errorf("append user card: %w", err)
	}
	return *found, nil
}

func (c *Client) RemoveUserCard(ctx context.Context, cardID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:C", c.userCardsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	kept := make([][]any, 0, len(resp.Values))
	removed := false
	for _, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == cardID {
			removed = true
			continue
		}
		kept = append(kept, row)
	}
	if !removed {
		return catalog.ErrCardNotFound
	}

	// Rewrite the whole block; the collection is small enough that a
	// clear-and-write beats structural row deletes.
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	if len(kept) == 0 {
		return nil
	}
	writeRng := fmt.Sprintf("%s!A2:C%d", c.userCardsSheet, 1+len(kept))
	vr := &gsheet.ValueRange{Values: kept}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", writeRng, err)
	}
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	names, err := c.readCol(ctx, c.categoriesSheet, "A2:A200")
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	if len(names) == 0 {
		return core.CanonicalCategories(), nil
	}
	return names, nil
}

func (c *Client) readCol(ctx context.Context, sheetName, col string) ([]string, error) {
	rng := fmt.Sprintf("%s!%s", sheetName, col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []string
	seen := map[string]struct{}{}
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
