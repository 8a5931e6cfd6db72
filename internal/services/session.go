package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for live session ids (jti -> user id)
	SessionKeyPrefix = "session:"
	// UserSessionsKeyPrefix is the Redis key prefix for the set of a user's session ids
	UserSessionsKeyPrefix = "user_sessions:"
)

// ErrInvalidSession covers malformed, expired, forged and revoked tokens.
var ErrInvalidSession = errors.New("invalid session")

// Claims are carried in the signed session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Session is a validated session.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// SessionManager issues HS256 session tokens and tracks their ids in Redis so
// a session can be revoked before it expires.
type SessionManager struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(rdb *redis.Client, secret string) *SessionManager {
	return &SessionManager{rdb: rdb, secret: []byte(secret), ttl: SessionDuration}
}

// Create issues a new session token for userID.
func (m *SessionManager) Create(ctx context.Context, userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	jti := uuid.NewString()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}

	userKey := UserSessionsKeyPrefix + userID
	pipe := m.rdb.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+jti, userID, m.ttl)
	pipe.SAdd(ctx, userKey, jti)
	pipe.Expire(ctx, userKey, m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	return token, expiresAt, nil
}

// Validate checks the signature and expiry and that the session has not been revoked.
func (m *SessionManager) Validate(ctx context.Context, token string) (*Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	owner, err := m.rdb.Get(ctx, SessionKeyPrefix+claims.ID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if owner != claims.UserID {
		return nil, ErrInvalidSession
	}

	return &Session{ID: claims.ID, UserID: claims.UserID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (m *SessionManager) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ID == "" || claims.UserID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Revoke ends the session behind token. Unknown or invalid tokens are ignored.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	pipe := m.rdb.TxPipeline()
	pipe.Del(ctx, SessionKeyPrefix+claims.ID)
	pipe.SRem(ctx, UserSessionsKeyPrefix+claims.UserID, claims.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeOthers ends every session of userID except keepID (used after a password change).
func (m *SessionManager) RevokeOthers(ctx context.Context, userID, keepID string) error {
	userKey := UserSessionsKeyPrefix + userID
	ids, err := m.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	pipe := m.rdb.TxPipeline()
	for _, id := range ids {
		if id == keepID {
			continue
		}
		pipe.Del(ctx, SessionKeyPrefix+id)
		pipe.SRem(ctx, userKey, id)
	}
	_, err = pipe.Exec(ctx)
	return err
}
