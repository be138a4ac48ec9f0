package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/taskboard/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the RevocationStore interface
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

var _ ports.RevocationStore = (*RedisStore)(nil)

// Connect builds a client from a redis:// or rediss:// URL and checks it
// answers within timeout. The caller owns the returned client.
func Connect(ctx context.Context, redisURL, password string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	if password != "" {
		opts.Password = password
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}

	client := redis.NewClient(opts)

	pingTimeout := timeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Revoke marks a token as revoked in Redis until ttl elapses
func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, revocationKey(token), revokedMarker, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked checks whether a token has a revocation entry in Redis. Errors
// report the token as revoked.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, revocationKey(token)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return true, fmt.Errorf("failed to check token revocation: %w", err)
	}
}
