package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/config"
	"github.com/redis/go-redis/v9"
)

// counterTTL bounds how long an unread counter lives without activity.
// The DB is the fallback on a cache miss, so expiry only costs a query.
const counterTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForUnreadCount generates the Redis key for a reader's unread counter
// in a match.
func (c *RedisCache) KeyForUnreadCount(matchID, readerID uint64) string {
	return fmt.Sprintf("unread:count:%d:%d", matchID, readerID)
}

// GetUnreadCount reads a cached unread counter.
// Returns (count, true) on a hit, (0, false) on a miss. TTL is refreshed
// on access since the reader is evidently active.
func (c *RedisCache) GetUnreadCount(ctx context.Context, matchID, readerID uint64) (int64, bool, error) {
	key := c.KeyForUnreadCount(matchID, readerID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat garbage as a miss
	}
	_ = c.Client.Expire(ctx, key, counterTTL).Err()
	return n, true, nil
}

// SetUnreadCount writes an unread counter with a fresh TTL.
func (c *RedisCache) SetUnreadCount(ctx context.Context, matchID, readerID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForUnreadCount(matchID, readerID), count, counterTTL).Err()
}

// IncrUnreadCount bumps the counter after a new message lands for readerID.
// Only bumps if the key exists: an absent key means the true value lives in
// the DB and will be cached on the next read.
func (c *RedisCache) IncrUnreadCount(ctx context.Context, matchID, readerID uint64) error {
	key := c.KeyForUnreadCount(matchID, readerID)
	n, err := c.Client.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	if err := c.Client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, counterTTL).Err()
}

// ResetUnreadCount zeroes the counter after the reader marked the match read.
func (c *RedisCache) ResetUnreadCount(ctx context.Context, matchID, readerID uint64) error {
	return c.Client.Set(ctx, c.KeyForUnreadCount(matchID, readerID), 0, counterTTL).Err()
}
