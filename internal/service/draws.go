package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// DrawService mirrors client draw events and serves the history feed.
type DrawService interface {
	// Record stores one drawn-card event reported by a client.
	Record(ctx context.Context, userID uuid.UUID, cardType model.CardType, cardID string, card model.Card) (*model.DrawnCard, error)
	// History returns the user's draws newest-first, optionally narrowed to one pool.
	History(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int) ([]model.DrawnCard, error)
	// GetOne returns a single draw by id.
	GetOne(ctx context.Context, userID, id uuid.UUID) (*model.DrawnCard, error)
}

// historyCache is the read-cache surface DrawService needs. Implemented by
// *cache.HistoryCache; nil disables caching.
type historyCache interface {
	Get(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int) ([]model.DrawnCard, bool)
	Set(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int, items []model.DrawnCard)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type DrawServiceImpl struct {
	repo  repository.DrawRepository
	cache historyCache
	now   func() time.Time
}

// NewDrawService constructs DrawService. cache may be nil.
func NewDrawService(repo repository.DrawRepository, cache historyCache) *DrawServiceImpl {
	return &DrawServiceImpl{repo: repo, cache: cache, now: time.Now}
}

// Record validates and stores one draw event.
func (s *DrawServiceImpl) Record(ctx context.Context, userID uuid.UUID, cardType model.CardType, cardID string, card model.Card) (*model.DrawnCard, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	if cardType != model.CardTypeDaily && cardType != model.CardTypeLifeline {
		return nil, fmt.Errorf("validation: unknown card type %q", cardType)
	}
	if cardID == "" {
		return nil, errors.New("validation: empty cardID")
	}
	if card.Message == "" {
		return nil, errors.New("validation: empty card message")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	d := &model.DrawnCard{
		ID:       id,
		UserID:   userID,
		CardID:   cardID,
		CardData: card,
		CardType: cardType,
		DrawnAt:  s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return d, nil
}

// History returns paged draws, consulting the cache first.
func (s *DrawServiceImpl) History(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int) ([]model.DrawnCard, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	if cardType != "" && cardType != model.CardTypeDaily && cardType != model.CardTypeLifeline {
		return nil, fmt.Errorf("validation: unknown card type %q", cardType)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx, userID, cardType, limit, offset); ok {
			return items, nil
		}
	}
	items, err := s.repo.ListByUser(ctx, userID, cardType, limit, offset)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, cardType, limit, offset, items)
	}
	return items, nil
}

// GetOne fetches a single draw by id.
func (s *DrawServiceImpl) GetOne(ctx context.Context, userID, id uuid.UUID) (*model.DrawnCard, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, errors.New("validation: empty userID/id")
	}
	return s.repo.GetByID(ctx, userID, id)
}
