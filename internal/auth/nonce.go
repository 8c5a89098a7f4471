package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const noncePrefix = "proof:nonce:"

// NonceStore issues single-use proof payloads with a TTL. Consuming a nonce
// deletes it, so a replayed proof fails even inside the TTL window.
type NonceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewNonceStore(rdb *redis.Client, ttl time.Duration) *NonceStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NonceStore{rdb: rdb, ttl: ttl}
}

func (n *NonceStore) Issue(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	if err := n.rdb.Set(ctx, noncePrefix+nonce, "1", n.ttl).Err(); err != nil {
		return "", fmt.Errorf("store proof nonce: %w", err)
	}
	return nonce, nil
}

func (n *NonceStore) Consume(ctx context.Context, nonce string) error {
	deleted, err := n.rdb.Del(ctx, noncePrefix+nonce).Result()
	if err != nil {
		return fmt.Errorf("consume proof nonce: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("unknown or expired proof nonce")
	}
	return nil
}
