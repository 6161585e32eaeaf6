package catalog

import (
	"context"
	"errors"

	"cardcompass/internal/core"
)

var (
	ErrCardNotFound  = errors.New("card not found")
	ErrDuplicateCard = errors.New("card already in collection")
)

// Ports for catalog backends.
type (
	// CardLister returns the full set of available cards.
	CardLister interface {
		ListCards(ctx context.Context) ([]core.Card, error)
	}

	// UserCardStore manages the user's collection. Cards are added by id
	// reference to the available catalog; the stored entry is a copy
	// taken at add time. Adding a duplicate id fails with
	// ErrDuplicateCard, adding or removing an unknown id with
	// ErrCardNotFound.
	UserCardStore interface {
		ListUserCards(ctx context.Context) ([]core.Card, error)
		AddUserCard(ctx context.Context, cardID string) (core.Card, error)
		RemoveUserCard(ctx context.Context, cardID string) error
	}

	// CatalogReplacer swaps the available-card set wholesale, as happens
	// after a collector run. User collections are unaffected.
	CatalogReplacer interface {
		ReplaceCards(ctx context.Context, cards []core.Card) error
	}

	// CategoryLister returns the canonical ordered category enumeration.
	CategoryLister interface {
		ListCategories(ctx context.Context) ([]string, error)
	}
)
