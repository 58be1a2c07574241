package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pholguinc/api-streaming/internal/config"
	"github.com/pholguinc/api-streaming/internal/domain"
)

// RedisStreamCache implements StreamCache on redis.
type RedisStreamCache struct {
	client *redis.Client
	prefix string
}

// NewRedisStreamCache connects to redis and returns a stream cache.
func NewRedisStreamCache(cfg config.RedisConfig) (*RedisStreamCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStreamCache{
		client: client,
		prefix: cfg.Prefix,
	}, nil
}

func (c *RedisStreamCache) keyByUID(uid string) string {
	return fmt.Sprintf("%s:uid:%s", c.prefix, uid)
}

func (c *RedisStreamCache) keyActive() string {
	return fmt.Sprintf("%s:active", c.prefix)
}

// GetStream reads a cached record by uid.
func (c *RedisStreamCache) GetStream(ctx context.Context, uid string) (*domain.Stream, error) {
	data, err := c.client.Get(ctx, c.keyByUID(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var stream domain.Stream
	if err := json.Unmarshal(data, &stream); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &stream, nil
}

// SetStream caches a record by uid.
func (c *RedisStreamCache) SetStream(ctx context.Context, stream *domain.Stream, ttl time.Duration) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.keyByUID(stream.UID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// GetActive reads the cached active-stream list.
func (c *RedisStreamCache) GetActive(ctx context.Context) ([]domain.Stream, error) {
	data, err := c.client.Get(ctx, c.keyActive()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var streams []domain.Stream
	if err := json.Unmarshal(data, &streams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return streams, nil
}

// SetActive caches the active-stream list.
func (c *RedisStreamCache) SetActive(ctx context.Context, streams []domain.Stream, ttl time.Duration) error {
	data, err := json.Marshal(streams)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.keyActive(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// Invalidate drops cached records and the active list. Called whenever a
// status flip makes cached reads untrustworthy.
func (c *RedisStreamCache) Invalidate(ctx context.Context, uids ...string) error {
	keys := make([]string, 0, len(uids)+1)
	keys = append(keys, c.keyActive())
	for _, uid := range uids {
		keys = append(keys, c.keyByUID(uid))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (c *RedisStreamCache) Close() error {
	return c.client.Close()
}
