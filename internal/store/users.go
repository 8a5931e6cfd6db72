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

const userColumns = `id, name, email, email_verified, image, password_hash, created_at, updated_at`

const userColumnsU = `u.id, u.name, u.email, u.email_verified, u.image, u.password_hash, u.created_at, u.updated_at`

type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u            models.User
		name, image  sql.NullString
		passwordHash sql.NullString
		verified     sql.NullTime
	)
	if err := row.Scan(&u.ID, &name, &u.Email, &verified, &image, &passwordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Image = image.String
	u.PasswordHash = passwordHash.String
	if verified.Valid {
		t := verified.Time
		u.EmailVerified = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts u, filling in its ID and timestamps. A registered email yields ErrEmailTaken.
func (s *PostgresUsers) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, email_verified, image, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, nullString(u.Name), u.Email, u.EmailVerified, nullString(u.Image), nullString(u.PasswordHash), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *PostgresUsers) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateName sets the display name; an empty name clears it.
func (s *PostgresUsers) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.getOne(ctx, `
		UPDATE users SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns, id, nullString(name), time.Now().UTC())
}

func (s *PostgresUsers) UpdateEmail(ctx context.Context, id, email string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	u, err := s.getOne(ctx, `
		UPDATE users SET email = $2, email_verified = NULL, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns, id, email, time.Now().UTC())
	if err != nil && isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

func (s *PostgresUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOrCreateOAuthUser resolves a provider identity to a user. An existing
// link wins; otherwise a verified email is linked to the matching user; otherwise
// a new user is created. An unverified email that collides with an existing
// user yields ErrEmailTaken.
func (s *PostgresUsers) FindOrCreateOAuthUser(ctx context.Context, p models.OAuthProfile) (*models.User, error) {
	if p.Email == "" {
		return nil, errors.New("oauth profile has no email")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin oauth tx: %w", err)
	}
	defer tx.Rollback()

	u, err := scanUser(tx.QueryRowContext(ctx, `
		SELECT `+userColumnsU+`
		FROM users u
		JOIN accounts a ON a.user_id = u.id
		WHERE a.provider = $1 AND a.provider_account_id = $2
	`, p.Provider, p.ProviderAccountID))
	switch {
	case err == nil:
		return u, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup oauth account: %w", err)
	}

	now := time.Now().UTC()
	u, err = scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, p.Email))
	switch {
	case err == nil:
		if !p.EmailVerified {
			return nil, ErrEmailTaken
		}
	case errors.Is(err, sql.ErrNoRows):
		u = &models.User{
			ID:        uuid.NewString(),
			Name:      p.Name,
			Email:     p.Email,
			Image:     p.Image,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if p.EmailVerified {
			u.EmailVerified = &now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, name, email, email_verified, image, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NULL, $6, $7)
		`, u.ID, nullString(u.Name), u.Email, u.EmailVerified, nullString(u.Image), u.CreatedAt, u.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("insert oauth user: %w", err)
		}
	default:
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, provider, provider_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), u.ID, p.Provider, p.ProviderAccountID, now); err != nil {
		return nil, fmt.Errorf("link oauth account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit oauth tx: %w", err)
	}
	return u, nil
}
