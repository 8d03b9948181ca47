package drafts

import (
	"context"
	"time"

	"github.com/meur/dtwiki/internal/errors"
	redisclient "github.com/meur/dtwiki/internal/redis"
)

const (
	keyPrefix  = "draft:"
	defaultTTL = 30 * 24 * time.Hour

	errKeyEmpty = "draft key cannot be empty"
)

// RedisConfig holds the configuration for the Redis store
type RedisConfig struct {
	Client redisclient.Client
	// TTL bounds how long an untouched draft survives; zero uses 30 days
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.TTL < 0 {
		return errors.InvalidArgument("ttl cannot be negative")
	}
	return nil
}

// RedisStore keeps drafts in Redis under draft:<key> with a sliding TTL
type RedisStore struct {
	client redisclient.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed draft store
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: cfg.Client, ttl: ttl}, nil
}

// Load returns the draft stored under key
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redisclient.Nil {
			return nil, errors.NotFoundf("no draft for %s", key)
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to load draft from Redis")
	}
	return data, nil
}

// Save stores data under key and refreshes its TTL
func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.InvalidArgument(errKeyEmpty)
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to save draft to Redis")
	}
	return nil
}

// Delete removes the draft stored under key. Missing drafts are not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.InvalidArgument(errKeyEmpty)
	}
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete draft from Redis")
	}
	return nil
}
