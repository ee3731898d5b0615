package providers

import (
	"qrtrack/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
)

// local mock logger to avoid import cycle with testutil
type cacheTestLogger struct{}

func (m *cacheTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Close()                                        {}

func cacheConfig(enabled bool, size, ttl int) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    size,
		},
		Stats: structures.StatsConfig{
			CacheTTL: ttl,
		},
	}
}

func TestCacheProvider_DisabledReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false, 10, 30), &cacheTestLogger{})
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_ZeroSizeReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 0, 30), &cacheTestLogger{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_EnabledReturnsCacheProvider(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 30), &cacheTestLogger{})
	assert.IsType(t, &CacheProvider{}, c)
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 30), &cacheTestLogger{})

	c.Set("key1", []byte("value1"))
	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("value1"), val)
}

func TestCacheProvider_GetMissing(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 30), &cacheTestLogger{})

	_, ok := c.Get("never-set")
	assert.False(t, ok)
}

func TestCacheProvider_Overwrite(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 30), &cacheTestLogger{})

	c.Set("key1", []byte("old"))
	c.Set("key1", []byte("new"))

	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), val)
}

func TestNoopCache_SetIsIgnored(t *testing.T) {
	c := &noopCache{}
	c.Set("key", []byte("value"))
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestUnsafeStringToBytes(t *testing.T) {
	assert.Nil(t, unsafeStringToBytes(""))
	assert.Equal(t, []byte("hello"), unsafeStringToBytes("hello"))
}
