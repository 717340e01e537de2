package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked token ids in Redis until they expire.
// A nil client disables revocation: Revoke is a no-op and no token is
// ever reported as revoked.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) Enabled() bool {
	return b != nil && b.client != nil
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

// Revoke blacklists the token id for expiresIn.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresIn time.Duration) error {
	if !b.Enabled() || tokenID == "" || expiresIn <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(tokenID), "1", expiresIn).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !b.Enabled() || tokenID == "" {
		return false, nil
	}
	_, err := b.client.Get(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}
