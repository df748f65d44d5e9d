package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/dailydeck/internal/crypto"
	"github.com/and161185/dailydeck/internal/errs"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/repository"
)

type fakeJournalRepo struct {
	byID map[uuid.UUID]*model.JournalEntry

	insErr error
	getErr error
	updErr error
}

var _ repository.JournalRepository = (*fakeJournalRepo)(nil)

func (f *fakeJournalRepo) Insert(_ context.Context, e *model.JournalEntry) error {
	if f.insErr != nil {
		return f.insErr
	}
	if f.byID == nil {
		f.byID = map[uuid.UUID]*model.JournalEntry{}
	}
	for _, old := range f.byID {
		if old.DrawnCardID == e.DrawnCardID && old.UserID == e.UserID {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *e
	f.byID[e.ID] = &cpy
	return nil
}
func (f *fakeJournalRepo) GetByDrawnCard(_ context.Context, userID, drawnCardID uuid.UUID) (*model.JournalEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.byID {
		if e.UserID == userID && e.DrawnCardID == drawnCardID {
			c := *e
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakeJournalRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*model.JournalEntry, error) {
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	c := *e
	return &c, nil
}
func (f *fakeJournalRepo) UpdateContent(_ context.Context, userID, id uuid.UUID, content string) (*model.JournalEntry, error) {
	if f.updErr != nil {
		return nil, f.updErr
	}
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	e.Content = content
	c := *e
	return &c, nil
}

func newJournalService(t *testing.T, repo *fakeJournalRepo, draws *fakeDrawRepo) *JournalServiceImpl {
	t.Helper()
	cipher, err := pkgcrypto.NewJournalCipher([]byte("journal-secret"))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	return NewJournalService(repo, draws, cipher)
}

func TestJournal_Create_SealsContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	u := uuid.Must(uuid.NewV4())
	dcID := uuid.Must(uuid.NewV4())
	repo := &fakeJournalRepo{}
	draws := &fakeDrawRepo{getOut: &model.DrawnCard{ID: dcID, UserID: u}}
	s := newJournalService(t, repo, draws)

	if _, err := s.Create(ctx, uuid.Nil, dcID, "note"); err == nil {
		t.Fatalf("want validation error on empty userID")
	}
	if _, err := s.Create(ctx, u, dcID, ""); err == nil {
		t.Fatalf("want validation error on empty content")
	}

	e, err := s.Create(ctx, u, dcID, "my reflection")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Content != "my reflection" {
		t.Fatalf("caller must see plaintext, got %q", e.Content)
	}
	stored := repo.byID[e.ID]
	if !strings.HasPrefix(stored.Content, "enc:") || strings.Contains(stored.Content, "reflection") {
		t.Fatalf("stored content not sealed: %q", stored.Content)
	}

	// second note for the same card is rejected
	if _, err := s.Create(ctx, u, dcID, "again"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestJournal_Create_RequiresOwnedDraw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	u := uuid.Must(uuid.NewV4())
	draws := &fakeDrawRepo{getErr: errs.ErrNotFound}
	s := newJournalService(t, &fakeJournalRepo{}, draws)

	if _, err := s.Create(ctx, u, uuid.Must(uuid.NewV4()), "note"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign/missing draw, got %v", err)
	}
}

func TestJournal_GetForCard_OpensContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	u := uuid.Must(uuid.NewV4())
	dcID := uuid.Must(uuid.NewV4())
	repo := &fakeJournalRepo{}
	draws := &fakeDrawRepo{getOut: &model.DrawnCard{ID: dcID, UserID: u}}
	s := newJournalService(t, repo, draws)

	created, err := s.Create(ctx, u, dcID, "keep going")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetForCard(ctx, u, dcID)
	if err != nil {
		t.Fatalf("GetForCard: %v", err)
	}
	if got.ID != created.ID || got.Content != "keep going" {
		t.Fatalf("unexpected entry: %+v", got)
	}

	if _, err := s.GetForCard(ctx, u, uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestJournal_GetForCard_LegacyPlaintext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	u := uuid.Must(uuid.NewV4())
	dcID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	repo := &fakeJournalRepo{byID: map[uuid.UUID]*model.JournalEntry{
		id: {ID: id, UserID: u, DrawnCardID: dcID, Content: "written before sealing"},
	}}
	s := newJournalService(t, repo, &fakeDrawRepo{})

	got, err := s.GetForCard(ctx, u, dcID)
	if err != nil {
		t.Fatalf("GetForCard: %v", err)
	}
	if got.Content != "written before sealing" {
		t.Fatalf("legacy content mangled: %q", got.Content)
	}
}

func TestJournal_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	u := uuid.Must(uuid.NewV4())
	dcID := uuid.Must(uuid.NewV4())
	repo := &fakeJournalRepo{}
	draws := &fakeDrawRepo{getOut: &model.DrawnCard{ID: dcID, UserID: u}}
	s := newJournalService(t, repo, draws)

	created, err := s.Create(ctx, u, dcID, "v1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.Update(ctx, u, created.ID, ""); err == nil {
		t.Fatalf("want validation error on empty content")
	}

	upd, err := s.Update(ctx, u, created.ID, "v2")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Content != "v2" {
		t.Fatalf("caller must see plaintext, got %q", upd.Content)
	}
	if stored := repo.byID[created.ID]; !strings.HasPrefix(stored.Content, "enc:") {
		t.Fatalf("stored update not sealed: %q", stored.Content)
	}

	if _, err := s.Update(ctx, u, uuid.Must(uuid.NewV4()), "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
