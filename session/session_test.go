package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func Test_TokenStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewTokenStore(rdb)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, s.Create(ctx, "jti-1", "user-1", exp))
	require.NoError(t, s.Create(ctx, "jti-2", "user-1", exp))
	require.NoError(t, s.Create(ctx, "jti-3", "user-2", exp))

	got, err := s.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, exp.Unix(), got.ExpiresAt)
	assert.True(t, mr.TTL(key("jti-1")) > 0)

	require.NoError(t, s.Delete(ctx, "jti-1"))
	_, err = s.Get(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, s.Delete(ctx, "jti-1"))

	require.NoError(t, s.RevokeAllForUser(ctx, "user-1"))
	_, err = s.Get(ctx, "jti-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Get(ctx, "jti-3")
	assert.NoError(t, err)
}

func Test_TokenStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewTokenStore(rdb)

	require.NoError(t, s.Create(ctx, "short", "u", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Error(t, s.Create(ctx, "past", "u", time.Now().Add(-time.Second)))
}

func Test_ResetStore_SingleUse(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewResetStore(rdb, time.Hour)

	token, err := s.Issue(ctx, "user-9")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.False(t, mr.Exists("app:pwreset:"+token), "raw token must not be a key")

	uid, err := s.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", uid)

	_, err = s.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
	_, err = s.Consume(ctx, "")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func Test_ResetStore_Expires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewResetStore(rdb, time.Hour)

	token, err := s.Issue(ctx, "user-9")
	require.NoError(t, err)
	mr.FastForward(61 * time.Minute)

	_, err = s.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
