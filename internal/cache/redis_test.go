package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisBackend connects to TEST_REDIS_URL, or skips when it is unset
func setupRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err, "Failed to connect to test redis")
	t.Cleanup(func() { _ = client.Close() })

	backend := NewRedisBackend(client, "yatube-test:"+t.Name()+":")
	require.NoError(t, backend.Clear(context.Background()))
	return backend
}

func TestRedisBackend_SetGetDelete(t *testing.T) {
	backend := setupRedisBackend(t)
	ctx := context.Background()

	_, ok, err := backend.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Set(ctx, "index:page:1", []byte("<ul></ul>"), time.Minute))
	value, ok, err := backend.Get(ctx, "index:page:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<ul></ul>", string(value))

	require.NoError(t, backend.Delete(ctx, "index:page:1"))
	_, ok, err = backend.Get(ctx, "index:page:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBackend_Clear(t *testing.T) {
	backend := setupRedisBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, backend.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, backend.Clear(ctx))

	_, ok, err := backend.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBackend_PageCache(t *testing.T) {
	backend := setupRedisBackend(t)
	cache := NewPageCache(backend, nil)
	ctx := context.Background()
	src := &source{content: "post A"}

	_, err := cache.GetOrRender(ctx, "index:page:1", time.Minute, src.render)
	require.NoError(t, err)
	src.content = "post B"

	payload, err := cache.GetOrRender(ctx, "index:page:1", time.Minute, src.render)
	require.NoError(t, err)
	assert.Equal(t, "post A", string(payload))
	assert.Equal(t, 1, src.renders)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
