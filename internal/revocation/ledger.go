package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger tracks revoked token identifiers. Revocation is append-only: once a
// jti is present it stays revoked for at least the supplied retention period,
// which must cover the token's remaining lifetime.
type Ledger interface {
	Revoke(ctx context.Context, jti string, retention time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const keyPrefix = "revoked_jti:"

// RedisLedger stores revoked jti values as Redis keys with a retention TTL.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger wraps a Redis client as a revocation ledger.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// Revoke inserts the jti. Re-revoking an already present jti succeeds and
// refreshes its retention, so concurrent logouts of the same token both pass.
func (l *RedisLedger) Revoke(ctx context.Context, jti string, retention time.Duration) error {
	return l.client.Set(ctx, keyPrefix+jti, time.Now().UTC().Format(time.RFC3339), retention).Err()
}

// IsRevoked reports whether the jti has been revoked.
func (l *RedisLedger) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
