package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed Cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis at addr and returns a cache with the
// given TTL. The connection is verified with a ping.
func NewRedisCache(addr, password string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) GetEmbedding(ctx context.Context, text string) ([]float32, bool, error) {
	val, err := c.client.Get(ctx, Key("embedding", text)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get embedding: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(val), &embedding); err != nil {
		return nil, false, fmt.Errorf("decoding cached embedding: %w", err)
	}
	return embedding, true, nil
}

func (c *RedisCache) SetEmbedding(ctx context.Context, text string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}
	if err := c.client.Set(ctx, Key("embedding", text), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set embedding: %w", err)
	}
	return nil
}

func (c *RedisCache) GetReport(ctx context.Context, query string, urls []string) (string, bool, error) {
	val, err := c.client.Get(ctx, Key("report", reportPayload(query, urls))).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get report: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) SetReport(ctx context.Context, query string, urls []string, report string) error {
	if err := c.client.Set(ctx, Key("report", reportPayload(query, urls)), report, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set report: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
