package repository

import (
	"context"

	"github.com/and161185/dailydeck/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DrawRepository stores the mirrored draw history.
type DrawRepository interface {
	// Insert appends one drawn-card record.
	Insert(ctx context.Context, d *model.DrawnCard) error

	// ListByUser returns the user's draws newest-first. cardType narrows to
	// one pool when non-empty; limit/offset page the result.
	ListByUser(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int) ([]model.DrawnCard, error)

	// GetByID loads one draw owned by the user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.DrawnCard, error)
}
