package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OutputStore holds generated files keyed by everything that determines
// their content. A store shared between machines lets one build reuse the
// output of another.
type OutputStore interface {
	// Get returns the stored file, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a file; ttl 0 means the store's default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ErrCacheMiss is returned when a key is not found in the store
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}

// RedisConfig configures a RedisStore
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL, e.g. redis://localhost:6379/0
	URL string
	// DefaultTTL applies to Set calls without a TTL
	DefaultTTL time.Duration
	// Prefix is prepended to all keys
	Prefix string
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		URL:        "redis://localhost:6379/0",
		DefaultTTL: 24 * time.Hour,
		Prefix:     "derive:output:",
	}
}

// RedisStore is an OutputStore backed by Redis
type RedisStore struct {
	client *redis.Client
	config RedisConfig
}

var _ OutputStore = (*RedisStore)(nil)

// NewRedisStore connects to config.URL and checks the connection
func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, config), nil
}

// NewRedisStoreWithClient creates a store on an existing client
func NewRedisStoreWithClient(client *redis.Client, config RedisConfig) *RedisStore {
	return &RedisStore{client: client, config: config}
}

// Get retrieves a stored file
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.config.Prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, err
	}
	return value, nil
}

// Set stores a file with a TTL
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}
	return r.client.Set(ctx, r.config.Prefix+key, value, ttl).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
