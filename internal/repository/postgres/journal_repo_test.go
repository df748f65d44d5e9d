package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/dailydeck/internal/errs"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestJournalRepo_Insert_OK_and_Duplicate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewJournalRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()
	e := &model.JournalEntry{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      uuid.Must(uuid.NewV4()),
		DrawnCardID: uuid.Must(uuid.NewV4()),
		Content:     "enc:abc",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO journal_entries \(id, user_id, drawn_card_id, content, created_at, updated_at\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WithArgs(e.ID, e.UserID, e.DrawnCardID, e.Content, e.CreatedAt, e.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Insert(ctx, e))

	mock.ExpectExec(`INSERT INTO journal_entries \(id, user_id, drawn_card_id, content, created_at, updated_at\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WithArgs(e.ID, e.UserID, e.DrawnCardID, e.Content, e.CreatedAt, e.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Insert(ctx, e)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestJournalRepo_GetByDrawnCard(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewJournalRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	drawnID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, user_id, drawn_card_id, content, created_at, updated_at FROM journal_entries WHERE user_id=\$1 AND drawn_card_id=\$2`).
		WithArgs(userID, drawnID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "drawn_card_id", "content", "created_at", "updated_at"}).
			AddRow(id, userID, drawnID, "enc:abc", now, now))
	e, err := r.GetByDrawnCard(ctx, userID, drawnID)
	require.NoError(t, err)
	require.Equal(t, id, e.ID)
	require.Equal(t, "enc:abc", e.Content)

	mock.ExpectQuery(`SELECT id, user_id, drawn_card_id, content, created_at, updated_at FROM journal_entries WHERE user_id=\$1 AND drawn_card_id=\$2`).
		WithArgs(userID, drawnID).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByDrawnCard(ctx, userID, drawnID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestJournalRepo_UpdateContent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewJournalRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	drawnID := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE journal_entries SET content=\$3, updated_at=now\(\) WHERE user_id=\$1 AND id=\$2 RETURNING id, user_id, drawn_card_id, content, created_at, updated_at`).
		WithArgs(userID, id, "enc:new").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "drawn_card_id", "content", "created_at", "updated_at"}).
			AddRow(id, userID, drawnID, "enc:new", now.Add(-time.Hour), now))
	e, err := r.UpdateContent(ctx, userID, id, "enc:new")
	require.NoError(t, err)
	require.Equal(t, "enc:new", e.Content)

	mock.ExpectQuery(`UPDATE journal_entries SET content=\$3, updated_at=now\(\) WHERE user_id=\$1 AND id=\$2 RETURNING id, user_id, drawn_card_id, content, created_at, updated_at`).
		WithArgs(userID, id, "enc:new").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.UpdateContent(ctx, userID, id, "enc:new")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
