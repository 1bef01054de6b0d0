package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "conversation:"

// redisStore implements Store on a Redis string value per key, with a TTL
// set on write and refreshed on read so active conversations stay alive.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) key(key string) string {
	return redisKeyPrefix + key
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	k := s.key(key)
	val, err := s.client.Get(ctx, k).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: redis get %s: %w", k, err)
	}

	// Refresh TTL on read; a failure here is not worth failing the read.
	_ = s.client.Expire(ctx, k, s.ttl).Err()

	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value string) error {
	k := s.key(key)
	if err := s.client.Set(ctx, k, value, s.ttl).Err(); err != nil {
		if isRedisOOM(err) {
			return fmt.Errorf("store: redis set %s: %w", k, ErrCapacityExceeded)
		}
		return fmt.Errorf("store: redis set %s: %w", k, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	k := s.key(key)
	if err := s.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("store: redis del %s: %w", k, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

// isRedisOOM detects the maxmemory rejection Redis reports for writes when
// it cannot evict enough keys.
func isRedisOOM(err error) bool {
	return err != nil && strings.Contains(err.Error(), "OOM")
}
