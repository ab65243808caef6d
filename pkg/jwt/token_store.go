package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/redis/go-redis/v9"
)

// TokenStore keeps revoked token ids in Redis until the token would have expired anyway
type TokenStore struct {
	rdb *redis.Client
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func (s *TokenStore) revokedKey(tokenId string) string {
	return fmt.Sprintf(constant.RedisKeyRevokedToken(), tokenId)
}

// Revoke marks the token as revoked until expiresAt. Already expired tokens are ignored.
func (s *TokenStore) Revoke(ctx context.Context, tokenId string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, s.revokedKey(tokenId), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was revoked
func (s *TokenStore) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	err := s.rdb.Get(ctx, s.revokedKey(tokenId)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get token status: %w", err)
	}
	return true, nil
}
