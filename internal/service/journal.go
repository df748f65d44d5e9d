package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/dailydeck/internal/crypto"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/repository"
)

// JournalService manages reflection notes attached to drawn cards. Content is
// sealed at rest and opened on read; entries created before sealing existed
// come back as plain text.
type JournalService interface {
	// Create attaches a note to a drawn card the user owns.
	Create(ctx context.Context, userID, drawnCardID uuid.UUID, content string) (*model.JournalEntry, error)
	// GetForCard returns the note attached to a drawn card.
	GetForCard(ctx context.Context, userID, drawnCardID uuid.UUID) (*model.JournalEntry, error)
	// Update replaces the note's content.
	Update(ctx context.Context, userID, entryID uuid.UUID, content string) (*model.JournalEntry, error)
}

type JournalServiceImpl struct {
	repo   repository.JournalRepository
	draws  repository.DrawRepository
	cipher *pkgcrypto.JournalCipher
	now    func() time.Time
}

// NewJournalService constructs JournalService.
func NewJournalService(repo repository.JournalRepository, draws repository.DrawRepository, cipher *pkgcrypto.JournalCipher) *JournalServiceImpl {
	return &JournalServiceImpl{repo: repo, draws: draws, cipher: cipher, now: time.Now}
}

// Create seals the content and stores a new entry after verifying the drawn
// card belongs to the user.
func (s *JournalServiceImpl) Create(ctx context.Context, userID, drawnCardID uuid.UUID, content string) (*model.JournalEntry, error) {
	if userID == uuid.Nil || drawnCardID == uuid.Nil {
		return nil, errors.New("validation: empty userID/drawnCardID")
	}
	if content == "" {
		return nil, errors.New("validation: empty content")
	}
	if _, err := s.draws.GetByID(ctx, userID, drawnCardID); err != nil {
		return nil, err
	}
	sealed, err := s.cipher.Seal(content)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	e := &model.JournalEntry{
		ID:          id,
		UserID:      userID,
		DrawnCardID: drawnCardID,
		Content:     sealed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, err
	}
	e.Content = content
	return e, nil
}

// GetForCard returns the opened entry for a drawn card.
func (s *JournalServiceImpl) GetForCard(ctx context.Context, userID, drawnCardID uuid.UUID) (*model.JournalEntry, error) {
	if userID == uuid.Nil || drawnCardID == uuid.Nil {
		return nil, errors.New("validation: empty userID/drawnCardID")
	}
	e, err := s.repo.GetByDrawnCard(ctx, userID, drawnCardID)
	if err != nil {
		return nil, err
	}
	return s.opened(e)
}

// Update seals the new content and replaces the stored one.
func (s *JournalServiceImpl) Update(ctx context.Context, userID, entryID uuid.UUID, content string) (*model.JournalEntry, error) {
	if userID == uuid.Nil || entryID == uuid.Nil {
		return nil, errors.New("validation: empty userID/entryID")
	}
	if content == "" {
		return nil, errors.New("validation: empty content")
	}
	sealed, err := s.cipher.Seal(content)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.UpdateContent(ctx, userID, entryID, sealed)
	if err != nil {
		return nil, err
	}
	e.Content = content
	return e, nil
}

func (s *JournalServiceImpl) opened(e *model.JournalEntry) (*model.JournalEntry, error) {
	plain, err := s.cipher.Open(e.Content)
	if err != nil {
		return nil, err
	}
	e.Content = plain
	return e, nil
}
