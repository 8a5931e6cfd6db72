package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/journal-backend/internal/models"
)

var journalCols = []string{"id", "user_id", "title", "content", "category", "sentiment", "summary", "suggestions", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func ownerFilter() string {
	return regexp.QuoteMeta("WHERE id = $1 AND user_id = $2")
}

func TestJournalCreateUsesSessionOwner(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	owner := uuid.NewString()

	mock.ExpectExec("INSERT INTO journals").
		WithArgs(sqlmock.AnyArg(), owner, "Morning walk", "Had a great morning walk today!", "Personal", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	j := &models.Journal{UserID: owner, Title: "Morning walk", Content: "Had a great morning walk today!", Category: "Personal"}
	require.NoError(t, s.Create(context.Background(), j))

	_, err := uuid.Parse(j.ID)
	assert.NoError(t, err)
	assert.False(t, j.CreatedAt.IsZero())
	assert.Equal(t, j.CreatedAt, j.UpdatedAt)
}

func TestJournalGetForUserFiltersByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	id, owner, other := uuid.NewString(), uuid.NewString(), uuid.NewString()
	now := time.Now().UTC()

	mock.ExpectQuery(ownerFilter()).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(journalCols).
			AddRow(id, owner, "Title", "Some content here", "Work", "Positive", "", "", now, now))
	mock.ExpectQuery(ownerFilter()).
		WithArgs(id, other).
		WillReturnRows(sqlmock.NewRows(journalCols))

	j, err := s.GetForUser(context.Background(), id, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, j.UserID)
	assert.Equal(t, "Work", j.Category)

	_, err = s.GetForUser(context.Background(), id, other)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalMalformedIDSkipsQuery(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewPostgresJournals(db)
	owner := uuid.NewString()

	_, err := s.GetForUser(context.Background(), "journal-1", owner)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateForUser(context.Background(), "journal-1", owner, models.JournalInput{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteForUser(context.Background(), "journal-1", owner), ErrNotFound)

	list, err := s.ListByUser(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestJournalUpdateForUserKeepsOmittedFields(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	id, owner := uuid.NewString(), uuid.NewString()
	now := time.Now().UTC()
	category := "Travel"

	mock.ExpectQuery(regexp.QuoteMeta("category = COALESCE($5, category)")+".*"+ownerFilter()).
		WithArgs(id, owner, "Trip plans", "Planning a trip to Japan next summer!", "Travel", nil, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(journalCols).
			AddRow(id, owner, "Trip plans", "Planning a trip to Japan next summer!", "Travel", "Positive", "old summary", "", now, now))

	j, err := s.UpdateForUser(context.Background(), id, owner, models.JournalInput{
		Title:    "Trip plans",
		Content:  "Planning a trip to Japan next summer!",
		Category: &category,
	})
	require.NoError(t, err)
	assert.Equal(t, "Positive", j.Sentiment)
	assert.Equal(t, "old summary", j.Summary)
}

func TestJournalUpdateForeignEntryIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	id, other := uuid.NewString(), uuid.NewString()

	mock.ExpectQuery("UPDATE journals SET").
		WithArgs(id, other, "t", "c", nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(journalCols))

	_, err := s.UpdateForUser(context.Background(), id, other, models.JournalInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalDeleteForUser(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	id, owner, other := uuid.NewString(), uuid.NewString(), uuid.NewString()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journals WHERE id = $1 AND user_id = $2")).
		WithArgs(id, other).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journals WHERE id = $1 AND user_id = $2")).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.ErrorIs(t, s.DeleteForUser(context.Background(), id, other), ErrNotFound)
	assert.NoError(t, s.DeleteForUser(context.Background(), id, owner))
}

func TestJournalListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	owner := uuid.NewString()
	newer := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows(journalCols).
			AddRow(uuid.NewString(), owner, "Second", "second entry body", "", "", "", "", newer, newer).
			AddRow(uuid.NewString(), owner, "First", "first entry body", "", "", "", "", older, older))

	list, err := s.ListByUser(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)
	assert.Equal(t, "First", list[1].Title)
}

func TestJournalUpdateEnrichment(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresJournals(db)
	id, owner := uuid.NewString(), uuid.NewString()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(NULLIF($3, ''), category)")+".*"+ownerFilter()).
		WithArgs(id, owner, "Work", "Neutral", "", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(journalCols).
			AddRow(id, owner, "T", "content body", "Work", "Neutral", "kept", "", now, now))

	j, err := s.UpdateEnrichment(context.Background(), id, owner, models.Enrichment{Category: "Work", Sentiment: "Neutral"})
	require.NoError(t, err)
	assert.Equal(t, "kept", j.Summary)
}
