package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRevoker is a TokenRevoker backed by redis. Keys expire with the token
// they shadow, so the denylist stays bounded without sweeping.
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

// NewRedisRevoker builds a revoker from a redis URL.
func NewRedisRevoker(url string) (*RedisRevoker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisRevoker{client: redis.NewClient(opts), prefix: "revoked:"}, nil
}

// Revoke marks the token hash revoked until ttl elapses.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+tokenHash, "1", ttl).Err()
}

// IsRevoked reports whether the token hash is on the denylist.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the underlying redis connection.
func (r *RedisRevoker) Close() error {
	return r.client.Close()
}
