package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/and161185/dailydeck/internal/errs"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// DrawRepo implements DrawRepository using PostgreSQL.
// Card payloads are stored as jsonb in card_data.
type DrawRepo struct{ db *DB }

// NewDrawRepo constructs a drawn-cards repository.
func NewDrawRepo(db *DB) *DrawRepo { return &DrawRepo{db: db} }

// Insert appends one drawn-card record.
func (r *DrawRepo) Insert(ctx context.Context, d *model.DrawnCard) error {
	data, err := json.Marshal(d.CardData)
	if err != nil {
		return fmt.Errorf("marshal card data: %w", err)
	}
	const q = `
INSERT INTO drawn_cards (id, user_id, card_id, card_data, card_type, drawn_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.Pool.Exec(ctx, q, d.ID, d.UserID, d.CardID, data, string(d.CardType), d.DrawnAt)
	return err
}

// ListByUser returns the user's draws newest-first.
// An empty cardType selects both pools.
func (r *DrawRepo) ListByUser(
	ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int,
) ([]model.DrawnCard, error) {
	const q = `
SELECT id, user_id, card_id, card_data, card_type, drawn_at
FROM drawn_cards
WHERE user_id=$1 AND ($2='' OR card_type=$2)
ORDER BY drawn_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.db.Pool.Query(ctx, q, userID, string(cardType), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DrawnCard
	for rows.Next() {
		d, err := scanDrawnCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetByID returns a single draw by id.
func (r *DrawRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.DrawnCard, error) {
	const q = `
SELECT id, user_id, card_id, card_data, card_type, drawn_at
FROM drawn_cards WHERE user_id=$1 AND id=$2`
	d, err := scanDrawnCard(r.db.Pool.QueryRow(ctx, q, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func scanDrawnCard(row pgx.Row) (*model.DrawnCard, error) {
	var (
		d        model.DrawnCard
		data     []byte
		cardType string
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.CardID, &data, &cardType, &d.DrawnAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &d.CardData); err != nil {
		return nil, fmt.Errorf("unmarshal card data: %w", err)
	}
	d.CardType = model.CardType(cardType)
	return &d, nil
}
