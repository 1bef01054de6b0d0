package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the key-value persistence capability the conversation memory
// manager consumes. Values are opaque strings.
type Store interface {
	// Get retrieves the value for key. The second return value reports
	// whether the key existed; a missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrCapacityExceeded reports that a write was rejected because the store
// is out of space. The memory manager reacts by truncating and retrying.
var ErrCapacityExceeded = errors.New("store: capacity exceeded")

// Driver selects the backing implementation of the store.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

// Option is a functional option for configuring a store.
type Option func(*config)

type config struct {
	redisClient    *redis.Client
	ttl            time.Duration
	memoryCapacity int
}

// WithRedisClient sets the Redis client for the Redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) {
		c.redisClient = client
	}
}

// WithTTL sets the expiry applied to Redis keys on every write and
// refreshed on every read.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithMemoryCapacity bounds the total value bytes the memory driver will
// hold. Zero means unbounded.
func WithMemoryCapacity(bytes int) Option {
	return func(c *config) {
		c.memoryCapacity = bytes
	}
}

// New creates a Store for the given driver. The Redis driver requires
// WithRedisClient.
func New(driver Driver, opts ...Option) (Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverMemory:
		return newMemoryStore(cfg.memoryCapacity), nil
	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, errors.New("store: redis driver requires a client")
		}
		ttl := cfg.ttl
		if ttl <= 0 {
			ttl = 7 * 24 * time.Hour
		}
		return &redisStore{client: cfg.redisClient, ttl: ttl}, nil
	default:
		return nil, errors.New("store: unknown driver " + string(driver))
	}
}
