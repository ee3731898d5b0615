package store

import (
	"context"
	"qrtrack/internal/providers"
	"qrtrack/internal/structures"
)

// KeyValueStore is the capability the repository and aggregation layers
// are written against: hash-shaped records, ordered lists and sets.
// Implementations must not contain any aggregation logic.
type KeyValueStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error)

	LPush(ctx context.Context, key, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SCard(ctx context.Context, key string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)

	Del(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
	Close() error
}

// NewStore selects the backend once, at construction time. Everything
// above it depends on the interface and never branches on backend identity.
func NewStore(conf *structures.Config, logger providers.Logger) KeyValueStore {
	if conf.Redis.Enabled && conf.Redis.Addr != "" {
		logger.Infof(providers.TypeApp, "Using redis store at %s", conf.Redis.Addr)
		return NewRedisStore(conf)
	}
	logger.Warnf(providers.TypeApp, "Redis not configured, falling back to in-memory store")
	return NewMemoryStore()
}
