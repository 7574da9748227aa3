package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// TokenStore tracks issued JWTs by jti so a token can be revoked before it
// expires. A token is only honoured while its session key exists.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

type TokenSession struct {
	UserID    string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(jti string) string        { return fmt.Sprintf("app:sess:%s", jti) }
func userSetKey(uid string) string { return fmt.Sprintf("app:user_sessions:%s", uid) }

func (s *TokenStore) Create(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	now := time.Now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return fmt.Errorf("session for %s already expired", jti)
	}
	b, err := json.Marshal(TokenSession{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(jti), b, ttl)
	pipe.SAdd(ctx, userSetKey(userID), jti)
	pipe.Expire(ctx, userSetKey(userID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *TokenStore) Get(ctx context.Context, jti string) (*TokenSession, error) {
	b, err := s.rdb.Get(ctx, key(jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var ts TokenSession
	if err := json.Unmarshal(b, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *TokenStore) Delete(ctx context.Context, jti string) error {
	ts, err := s.Get(ctx, jti)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(jti))
	if ts != nil {
		pipe.SRem(ctx, userSetKey(ts.UserID), jti)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAllForUser drops every session of the user, e.g. after a password reset.
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, jti := range ids {
		pipe.Del(ctx, key(jti))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
