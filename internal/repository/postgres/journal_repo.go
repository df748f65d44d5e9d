package postgres

import (
	"context"
	"errors"

	"github.com/and161185/dailydeck/internal/errs"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// JournalRepo implements JournalRepository using PostgreSQL.
type JournalRepo struct{ db *DB }

// NewJournalRepo constructs a journal repository.
func NewJournalRepo(db *DB) *JournalRepo { return &JournalRepo{db: db} }

// Insert creates one journal entry. A second entry for the same drawn card
// hits the unique constraint and maps to ErrAlreadyExists.
func (r *JournalRepo) Insert(ctx context.Context, e *model.JournalEntry) error {
	const q = `
INSERT INTO journal_entries (id, user_id, drawn_card_id, content, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, e.ID, e.UserID, e.DrawnCardID, e.Content, e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByDrawnCard selects the entry attached to a drawn card.
func (r *JournalRepo) GetByDrawnCard(ctx context.Context, userID, drawnCardID uuid.UUID) (*model.JournalEntry, error) {
	const q = `
SELECT id, user_id, drawn_card_id, content, created_at, updated_at
FROM journal_entries WHERE user_id=$1 AND drawn_card_id=$2`
	return scanJournalEntry(r.db.Pool.QueryRow(ctx, q, userID, drawnCardID))
}

// GetByID selects a single entry by id.
func (r *JournalRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.JournalEntry, error) {
	const q = `
SELECT id, user_id, drawn_card_id, content, created_at, updated_at
FROM journal_entries WHERE user_id=$1 AND id=$2`
	return scanJournalEntry(r.db.Pool.QueryRow(ctx, q, userID, id))
}

// UpdateContent replaces the entry's content and returns the updated row.
func (r *JournalRepo) UpdateContent(ctx context.Context, userID, id uuid.UUID, content string) (*model.JournalEntry, error) {
	const q = `
UPDATE journal_entries
SET content=$3, updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING id, user_id, drawn_card_id, content, created_at, updated_at`
	return scanJournalEntry(r.db.Pool.QueryRow(ctx, q, userID, id, content))
}

func scanJournalEntry(row pgx.Row) (*model.JournalEntry, error) {
	var e model.JournalEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.DrawnCardID, &e.Content, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
