package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "castella:storage:"

// ConnectRedis initializes a Redis client from a redis:// URL or a host:port address.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisProvider keeps each client's items in one hash. Every write pushes the hash expiry
// out by ttl so abandoned client contexts disappear on their own.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProvider(client *redis.Client, ttl time.Duration) *RedisProvider {
	return &RedisProvider{client: client, ttl: ttl}
}

func (p *RedisProvider) Open(clientID string) Storage {
	return &redisStorage{client: p.client, key: redisKeyPrefix + clientID, ttl: p.ttl}
}

type redisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", key, err)
	}
	return nil
}
