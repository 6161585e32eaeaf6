package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cardcompass/internal/catalog"
	"cardcompass/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the catalog ports on SQLite. The card
// catalog row stores rewards and sign-up bonus as JSON blobs, so the
// wire shape survives round trips unchanged.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, issuer, reward_type, annual_fee, rewards, sign_up_bonus
		 FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func (r *SQLiteRepository) ListUserCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT card FROM user_cards ORDER BY added_at, card_id`)
	if err != nil {
		return nil, fmt.Errorf("query user cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan user card: %w", err)
		}
		var card core.Card
		if err := json.Unmarshal([]byte(blob), &card); err != nil {
			return nil, fmt.Errorf("parse user card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user cards: %w", err)
	}
	return cards, nil
}

func (r *SQLiteRepository) AddUserCard(ctx context.Context, cardID string) (core.Card, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, issuer, reward_type, annual_fee, rewards, sign_up_bonus
		 FROM cards WHERE id = ?`, cardID)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, fmt.Errorf("%w: %s", catalog.ErrCardNotFound, cardID)
	}
	if err != nil {
		return core.Card{}, err
	}

	blob, err := json.Marshal(card)
	if err != nil {
		return core.Card{}, fmt.Errorf("marshal card copy: %w", err)
	}

	var exists int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_cards WHERE card_id = ?`, cardID).Scan(&exists); err != nil {
		return core.Card{}, fmt.Errorf("check user card: %w", err)
	}
	if exists > 0 {
		return core.Card{}, fmt.Errorf("%w: %s", catalog.ErrDuplicateCard, cardID)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO user_cards (card_id, card) VALUES (?, ?)`, cardID, string(blob)); err != nil {
		return core.Card{}, fmt.Errorf("insert user card: %w", err)
	}

	slog.InfoContext(ctx, "Card added to user collection", "card_id", cardID)
	return card, nil
}

func (r *SQLiteRepository) RemoveUserCard(ctx context.Context, cardID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_cards WHERE card_id = ?`, cardID)
	if err != nil {
		return fmt.Errorf("delete user card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrCardNotFound, cardID)
	}
	return nil
}

// ReplaceCards swaps the whole catalog in one transaction. User card
// copies are untouched.
func (r *SQLiteRepository) ReplaceCards(ctx context.Context, cards []core.Card) error {
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("card %q: %w", c.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	for _, c := range cards {
		rewards, err := json.Marshal(c.Rewards)
		if err != nil {
			return fmt.Errorf("marshal rewards for %s: %w", c.ID, err)
		}
		var bonus sql.NullString
		if c.SignUpBonus != nil {
			b, err := json.Marshal(c.SignUpBonus)
			if err != nil {
				return fmt.Errorf("marshal sign-up bonus for %s: %w", c.ID, err)
			}
			bonus = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, name, issuer, reward_type, annual_fee, rewards, sign_up_bonus)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Issuer, string(c.Type), c.AnnualFee, string(rewards), bonus); err != nil {
			return fmt.Errorf("insert card %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog replace: %w", err)
	}

	slog.InfoContext(ctx, "Card catalog replaced", "cards", len(cards))
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (core.Card, error) {
	var (
		card       core.Card
		rewardType string
		rewards    string
		bonus      sql.NullString
	)
	if err := s.Scan(&card.ID, &card.Name, &card.Issuer, &rewardType, &card.AnnualFee, &rewards, &bonus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Card{}, err
		}
		return core.Card{}, fmt.Errorf("scan card: %w", err)
	}
	card.Type = core.RewardType(rewardType)
	if err := json.Unmarshal([]byte(rewards), &card.Rewards); err != nil {
		return core.Card{}, fmt.Errorf("parse rewards for %s: %w", card.ID, err)
	}
	if bonus.Valid {
		card.SignUpBonus = &core.SignUpBonus{}
		if err := json.Unmarshal([]byte(bonus.String), card.SignUpBonus); err != nil {
			return core.Card{}, fmt.Errorf("parse sign-up bonus for %s: %w", card.ID, err)
		}
	}
	return card, nil
}
