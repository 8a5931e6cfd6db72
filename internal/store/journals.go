package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/journal-backend/internal/models"
)

const journalColumns = `id, user_id, title, content, category, sentiment, summary, suggestions, created_at, updated_at`

type PostgresJournals struct {
	db *sql.DB
}

func NewPostgresJournals(db *sql.DB) *PostgresJournals {
	return &PostgresJournals{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournal(row rowScanner) (*models.Journal, error) {
	var j models.Journal
	if err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Category, &j.Sentiment,
		&j.Summary, &j.Suggestions, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts j, filling in its ID and timestamps.
func (s *PostgresJournals) Create(ctx context.Context, j *models.Journal) error {
	now := time.Now().UTC()
	j.ID = uuid.NewString()
	j.CreatedAt = now
	j.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journals (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, j.ID, j.UserID, j.Title, j.Content, j.Category, j.Sentiment, j.Summary, j.Suggestions, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

// ListByUser returns the user's entries, newest first.
func (s *PostgresJournals) ListByUser(ctx context.Context, userID string) ([]models.Journal, error) {
	journals := make([]models.Journal, 0)
	if !validID(userID) {
		return journals, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+journalColumns+`
		FROM journals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		journals = append(journals, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	return journals, nil
}

func (s *PostgresJournals) GetForUser(ctx context.Context, id, userID string) (*models.Journal, error) {
	if !validID(id) || !validID(userID) {
		return nil, ErrNotFound
	}

	j, err := scanJournal(s.db.QueryRowContext(ctx, `
		SELECT `+journalColumns+`
		FROM journals
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get journal: %w", err)
	}
	return j, nil
}

// UpdateForUser replaces title and content; optional fields left nil keep their stored value.
func (s *PostgresJournals) UpdateForUser(ctx context.Context, id, userID string, in models.JournalInput) (*models.Journal, error) {
	if !validID(id) || !validID(userID) {
		return nil, ErrNotFound
	}

	j, err := scanJournal(s.db.QueryRowContext(ctx, `
		UPDATE journals SET
			title = $3,
			content = $4,
			category = COALESCE($5, category),
			sentiment = COALESCE($6, sentiment),
			summary = COALESCE($7, summary),
			suggestions = COALESCE($8, suggestions),
			updated_at = $9
		WHERE id = $1 AND user_id = $2
		RETURNING `+journalColumns,
		id, userID, in.Title, in.Content, in.Category, in.Sentiment, in.Summary, in.Suggestions, time.Now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update journal: %w", err)
	}
	return j, nil
}

// UpdateEnrichment writes the non-empty AI fields of e.
func (s *PostgresJournals) UpdateEnrichment(ctx context.Context, id, userID string, e models.Enrichment) (*models.Journal, error) {
	if !validID(id) || !validID(userID) {
		return nil, ErrNotFound
	}

	j, err := scanJournal(s.db.QueryRowContext(ctx, `
		UPDATE journals SET
			category = COALESCE(NULLIF($3, ''), category),
			sentiment = COALESCE(NULLIF($4, ''), sentiment),
			summary = COALESCE(NULLIF($5, ''), summary),
			suggestions = COALESCE(NULLIF($6, ''), suggestions),
			updated_at = $7
		WHERE id = $1 AND user_id = $2
		RETURNING `+journalColumns,
		id, userID, e.Category, e.Sentiment, e.Summary, e.Suggestions, time.Now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update journal enrichment: %w", err)
	}
	return j, nil
}

func (s *PostgresJournals) DeleteForUser(ctx context.Context, id, userID string) error {
	if !validID(id) || !validID(userID) {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
