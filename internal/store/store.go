// Package store holds the repository interfaces the HTTP layer depends on and
// their PostgreSQL implementations.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/journal-backend/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when an email address is already registered.
	ErrEmailTaken = errors.New("email already in use")
)

// JournalStore is scoped by owner: every single-entry call takes the
// requesting user's ID and never touches another user's rows.
type JournalStore interface {
	Create(ctx context.Context, j *models.Journal) error
	ListByUser(ctx context.Context, userID string) ([]models.Journal, error)
	GetForUser(ctx context.Context, id, userID string) (*models.Journal, error)
	UpdateForUser(ctx context.Context, id, userID string, in models.JournalInput) (*models.Journal, error)
	UpdateEnrichment(ctx context.Context, id, userID string, e models.Enrichment) (*models.Journal, error)
	DeleteForUser(ctx context.Context, id, userID string) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id, name string) (*models.User, error)
	UpdateEmail(ctx context.Context, id, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	FindOrCreateOAuthUser(ctx context.Context, p models.OAuthProfile) (*models.User, error)
}

// validID reports whether id can be a primary key. Malformed ids are treated
// as missing rows rather than surfacing a Postgres cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
