package persist

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, ok, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mem.Save(ctx, []byte(`{"token":"abc"}`)))
	data, ok, err := mem.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"token":"abc"}`, string(data))
	assert.Equal(t, 1, mem.Saves)

	require.NoError(t, mem.Clear(ctx))
	_, ok, err = mem.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as no snapshot")

	require.NoError(t, fs.Save(ctx, []byte(`{"token":"abc"}`)))
	data, ok, err := fs.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"token":"abc"}`, string(data))

	// Overwrite replaces, never appends.
	require.NoError(t, fs.Save(ctx, []byte(`{"token":"xyz"}`)))
	data, _, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"xyz"}`, string(data))

	require.NoError(t, fs.Clear(ctx))
	_, ok, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an already-missing file is not an error.
	require.NoError(t, fs.Clear(ctx))
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("  ")
	require.Error(t, err)
}

type mockRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockRedis() *mockRedis {
	return &mockRedis{data: map[string]string{}}
}

func (m *mockRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockRedis()
	store := &RedisStore{store: mock, session: "kiosk-1", ttl: time.Hour}

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, []byte(`{"token":"abc"}`)))
	assert.Contains(t, mock.data, "storefront:session:kiosk-1")

	data, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"token":"abc"}`, string(data))

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
