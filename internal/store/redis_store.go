package store

import (
	"context"
	"qrtrack/internal/structures"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultOpTimeout = 2 * time.Second

// RedisStore maps the capability interface onto a single redis client.
// Every call carries a short timeout so a slow backend degrades requests
// instead of hanging them.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisStore(conf *structures.Config) *RedisStore {
	timeout := conf.Redis.OpTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	return &RedisStore{
		client:  client,
		timeout: timeout,
	}
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	args := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		args[k] = v
	}
	return s.client.HSet(ctx, key, args).Err()
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.HGetAll(ctx, key).Result()
}

func (s *RedisStore) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.HIncrBy(ctx, key, field, incr).Result()
}

func (s *RedisStore) LPush(ctx context.Context, key, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.LPush(ctx, key, value).Err()
}

func (s *RedisStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.LRange(ctx, key, start, stop).Result()
}

func (s *RedisStore) SAdd(ctx context.Context, key string, members ...string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SAdd(ctx, key, args...).Err()
}

func (s *RedisStore) SRem(ctx context.Context, key string, members ...string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SRem(ctx, key, args...).Err()
}

func (s *RedisStore) SCard(ctx context.Context, key string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.SCard(ctx, key).Result()
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.SMembers(ctx, key).Result()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
