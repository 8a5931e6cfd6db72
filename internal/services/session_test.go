package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestSessionCreateAndValidate(t *testing.T) {
	_, rdb := newTestRedis(t)
	m := NewSessionManager(rdb, "test-secret")
	ctx := context.Background()

	token, expiresAt, err := m.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionDuration), expiresAt, time.Minute)

	s, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)
	assert.NotEmpty(t, s.ID)
}

func TestSessionRejectsForgedAndGarbageTokens(t *testing.T) {
	_, rdb := newTestRedis(t)
	m := NewSessionManager(rdb, "test-secret")
	other := NewSessionManager(rdb, "other-secret")
	ctx := context.Background()

	forged, _, err := other.Create(ctx, "user-1")
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-jwt", forged} {
		_, err := m.Validate(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidSession)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{ID: "x"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRevoke(t *testing.T) {
	_, rdb := newTestRedis(t)
	m := NewSessionManager(rdb, "test-secret")
	ctx := context.Background()

	token, _, err := m.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, token))

	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.NoError(t, m.Revoke(ctx, "garbage"))
}

func TestSessionExpiresWithRedisTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	m := NewSessionManager(rdb, "test-secret")
	ctx := context.Background()

	token, _, err := m.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(SessionDuration + time.Second)

	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRevokeOthersKeepsCurrent(t *testing.T) {
	_, rdb := newTestRedis(t)
	m := NewSessionManager(rdb, "test-secret")
	ctx := context.Background()

	laptop, _, err := m.Create(ctx, "user-1")
	require.NoError(t, err)
	phone, _, err := m.Create(ctx, "user-1")
	require.NoError(t, err)
	elsewhere, _, err := m.Create(ctx, "user-2")
	require.NoError(t, err)

	current, err := m.Validate(ctx, laptop)
	require.NoError(t, err)
	require.NoError(t, m.RevokeOthers(ctx, "user-1", current.ID))

	_, err = m.Validate(ctx, laptop)
	assert.NoError(t, err)
	_, err = m.Validate(ctx, phone)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = m.Validate(ctx, elsewhere)
	assert.NoError(t, err)
}
