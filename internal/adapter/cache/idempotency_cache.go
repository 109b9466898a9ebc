package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-openapi-service/internal/domain/user"
)

// IdempotentEntry is the outcome of a create stored under an idempotency key.
type IdempotentEntry struct {
	User        domain.User `json:"user"`
	Fingerprint string      `json:"fingerprint"`
}

// IdempotencyCache defines the interface for idempotent create bookkeeping.
type IdempotencyCache interface {
	// Get retrieves the entry stored under key.
	// Returns nil if nothing is stored.
	Get(ctx context.Context, key string) (*IdempotentEntry, error)

	// Set stores the entry under key with the configured TTL unless key already
	// holds one, and returns the entry that is stored under key afterwards.
	Set(ctx context.Context, key string, entry *IdempotentEntry) (*IdempotentEntry, error)
}

// RedisIdempotencyCache implements IdempotencyCache using Redis as the backing store.
type RedisIdempotencyCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisIdempotencyCache creates a new Redis-backed idempotency cache.
func NewRedisIdempotencyCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisIdempotencyCache {
	return &RedisIdempotencyCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisIdempotencyCache) cacheKey(key string) string {
	return "idempotency:users:" + key
}

// Get retrieves an entry from Redis.
func (c *RedisIdempotencyCache) Get(ctx context.Context, key string) (*IdempotentEntry, error) {
	data, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("idempotency miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get idempotency entry", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	var entry IdempotentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Error("failed to unmarshal idempotency entry", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.log.Debug("idempotency hit", zap.String("key", key), zap.String("user_id", entry.User.ID))
	return &entry, nil
}

// Set stores an entry in Redis with TTL. An existing entry is never overwritten;
// when another writer got there first, its entry is returned instead of entry.
func (c *RedisIdempotencyCache) Set(ctx context.Context, key string, entry *IdempotentEntry) (*IdempotentEntry, error) {
	if entry == nil {
		return nil, fmt.Errorf("cannot cache nil entry")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.log.Error("failed to marshal idempotency entry", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	ok, err := c.client.SetNX(ctx, c.cacheKey(key), data, c.ttl).Result()
	if err != nil {
		c.log.Error("failed to set idempotency entry", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if ok {
		c.log.Debug("cached idempotency entry", zap.String("key", key), zap.Duration("ttl", c.ttl))
		return entry, nil
	}

	stored, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		// The winner expired between SetNX and Get.
		c.log.Debug("idempotency entry vanished before it could be read", zap.String("key", key))
		return entry, nil
	}

	c.log.Debug("idempotency entry already present", zap.String("key", key), zap.String("user_id", stored.User.ID))
	return stored, nil
}
