package testutil

import (
	"context"
	"qrtrack/internal/providers"
	"qrtrack/internal/store"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// IdentityCodec implements qrimage.BlobCodecInterface without transforming
// values, so assertions can compare stored fields directly.
type IdentityCodec struct{}

func (IdentityCodec) Encode(val string) (string, error) { return val, nil }
func (IdentityCodec) Decode(val string) (string, error) { return val, nil }

// FailingStore wraps a KeyValueStore and fails selected operations.
// Zero-valued it is a transparent pass-through.
type FailingStore struct {
	store.KeyValueStore
	HSetErr     error
	HGetAllErr  error
	HIncrByErr  error
	LPushErr    error
	LRangeErr   error
	SAddErr     error
	SRemErr     error
	SCardErr    error
	SMembersErr error
	DelErr      error
	PingErr     error
}

func (f *FailingStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if f.HSetErr != nil {
		return f.HSetErr
	}
	return f.KeyValueStore.HSet(ctx, key, fields)
}

func (f *FailingStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if f.HGetAllErr != nil {
		return nil, f.HGetAllErr
	}
	return f.KeyValueStore.HGetAll(ctx, key)
}

func (f *FailingStore) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	if f.HIncrByErr != nil {
		return 0, f.HIncrByErr
	}
	return f.KeyValueStore.HIncrBy(ctx, key, field, incr)
}

func (f *FailingStore) LPush(ctx context.Context, key, value string) error {
	if f.LPushErr != nil {
		return f.LPushErr
	}
	return f.KeyValueStore.LPush(ctx, key, value)
}

func (f *FailingStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if f.LRangeErr != nil {
		return nil, f.LRangeErr
	}
	return f.KeyValueStore.LRange(ctx, key, start, stop)
}

func (f *FailingStore) SAdd(ctx context.Context, key string, members ...string) error {
	if f.SAddErr != nil {
		return f.SAddErr
	}
	return f.KeyValueStore.SAdd(ctx, key, members...)
}

func (f *FailingStore) SRem(ctx context.Context, key string, members ...string) error {
	if f.SRemErr != nil {
		return f.SRemErr
	}
	return f.KeyValueStore.SRem(ctx, key, members...)
}

func (f *FailingStore) SCard(ctx context.Context, key string) (int64, error) {
	if f.SCardErr != nil {
		return 0, f.SCardErr
	}
	return f.KeyValueStore.SCard(ctx, key)
}

func (f *FailingStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if f.SMembersErr != nil {
		return nil, f.SMembersErr
	}
	return f.KeyValueStore.SMembers(ctx, key)
}

func (f *FailingStore) Del(ctx context.Context, keys ...string) error {
	if f.DelErr != nil {
		return f.DelErr
	}
	return f.KeyValueStore.Del(ctx, keys...)
}

func (f *FailingStore) Ping(ctx context.Context) error {
	if f.PingErr != nil {
		return f.PingErr
	}
	return f.KeyValueStore.Ping(ctx)
}

// MockMetrics records scan counter increments; everything else is a no-op.
type MockMetrics struct {
	mu        sync.Mutex
	ScanIncrs []string
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}

func (m *MockMetrics) IncScansTotal(deviceType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScanIncrs = append(m.ScanIncrs, deviceType)
}
