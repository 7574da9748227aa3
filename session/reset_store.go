package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// ResetStore keeps one-time password reset tokens. Only the sha256 of a token
// is stored; the raw value goes to the user.
type ResetStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResetStore(rdb *redis.Client, ttl time.Duration) *ResetStore {
	return &ResetStore{rdb: rdb, ttl: ttl}
}

func resetKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("app:pwreset:%s", hex.EncodeToString(sum[:]))
}

// Issue creates a token for userID and returns the raw value.
func (s *ResetStore) Issue(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.rdb.Set(ctx, resetKey(token), userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume returns the user the token was issued for and deletes it in the
// same command, so a token works at most once.
func (s *ResetStore) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrResetTokenInvalid
	}
	uid, err := s.rdb.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrResetTokenInvalid
	}
	return uid, err
}

func (s *ResetStore) TTL() time.Duration { return s.ttl }
