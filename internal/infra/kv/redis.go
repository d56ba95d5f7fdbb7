package kv

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"healthcare-storefront/internal/config"
	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/domain/ports/repository"
)

var _ repository.KeyValueStore = (*RedisStore)(nil)

// RedisStore backs the key/value port with Redis for deployments that want
// grants and the analytics fallback queue to survive restarts.
type RedisStore struct {
	cli *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.StorageConfig) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{cli: c}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.cli.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.cli.Del(ctx, key).Err()
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := s.cli.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) Close() error { return s.cli.Close() }
