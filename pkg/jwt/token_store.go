package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbeoliero/coursehub/pkg/constant"
)

// TokenStore tracks refresh tokens that were already exchanged, so a second
// use of the same refresh token can be detected across instances
type TokenStore struct {
	rdb           *redis.Client
	refreshExpire time.Duration
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(rdb *redis.Client, refreshExpireHours int) *TokenStore {
	return &TokenStore{
		rdb:           rdb,
		refreshExpire: time.Duration(refreshExpireHours) * time.Hour,
	}
}

// usedKey generates Redis key for a user's used refresh tokens
// Format: {prefix}token:refresh_used:{userId}
func (s *TokenStore) usedKey(userId string) string {
	return fmt.Sprintf(constant.RedisKeyRefreshTokenUsed(), userId)
}

// MarkUsed records a refresh token as consumed
func (s *TokenStore) MarkUsed(ctx context.Context, userId, token string) error {
	key := s.usedKey(userId)

	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key, token)
	pipe.Expire(ctx, key, s.refreshExpire)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark refresh token used: %w", err)
	}

	return nil
}

// IsUsed reports whether the refresh token was already exchanged
func (s *TokenStore) IsUsed(ctx context.Context, userId, token string) (bool, error) {
	used, err := s.rdb.SIsMember(ctx, s.usedKey(userId), token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return used, nil
}

// ForceLogoutUser forgets every tracked token of a user
func (s *TokenStore) ForceLogoutUser(ctx context.Context, userId string) error {
	if err := s.rdb.Del(ctx, s.usedKey(userId)).Err(); err != nil {
		return fmt.Errorf("failed to delete used tokens: %w", err)
	}
	return nil
}
