package repository

import (
	"context"

	"github.com/and161185/dailydeck/internal/model"
	"github.com/gofrs/uuid/v5"
)

// JournalRepository stores journal entries. Content at this layer is the
// stored form (ciphertext); the service handles sealing/opening.
type JournalRepository interface {
	// Insert creates an entry; one entry per drawn card.
	Insert(ctx context.Context, e *model.JournalEntry) error
	// GetByDrawnCard loads the entry attached to a drawn card.
	GetByDrawnCard(ctx context.Context, userID, drawnCardID uuid.UUID) (*model.JournalEntry, error)
	// GetByID loads one entry owned by the user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.JournalEntry, error)
	// UpdateContent replaces the entry's content and bumps updated_at.
	UpdateContent(ctx context.Context, userID, id uuid.UUID, content string) (*model.JournalEntry, error)
}
