// Package cache memoizes rendered pages for a bounded time.
//
// PageCache sits in front of a Backend. A cached payload is served unchanged until
// it expires or is invalidated, even if the data it was rendered from has changed.
// Backend failures never fail a request: the page is rendered directly instead.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backend is a key/value store with per-entry expiry
type Backend interface {
	// Get returns the value and true on a hit, or false on a miss or expired entry
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this backend
	Clear(ctx context.Context) error
}

// ErrNoStore is returned by a RenderFunc together with a payload that must be
// served but not cached
var ErrNoStore = errors.New("payload not cacheable")

// RenderFunc produces the payload to cache
type RenderFunc func(ctx context.Context) ([]byte, error)

// PageCache memoizes rendered pages
type PageCache struct {
	backend Backend
	logger  *slog.Logger
	renders singleflight.Group

	// generations is bumped per key by Invalidate and for every key by Clear.
	// A render only stores its payload if the generation did not move while it ran.
	mu          sync.Mutex
	epoch       uint64
	generations map[string]uint64
}

// NewPageCache creates a page cache over backend
func NewPageCache(backend Backend, logger *slog.Logger) *PageCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageCache{
		backend:     backend,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// GetOrRender returns the cached payload for key, or calls render and caches its output for ttl.
// Concurrent misses on the same key share one render call, which is detached from the
// cancellation of the caller that started it.
// Render errors are returned and nothing is cached.
func (c *PageCache) GetOrRender(ctx context.Context, key string, ttl time.Duration, render RenderFunc) ([]byte, error) {
	if ttl <= 0 {
		return renderUncached(ctx, render)
	}

	payload, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("page cache read failed, rendering directly", "key", key, "error", err)
		return renderUncached(ctx, render)
	}
	if ok {
		return payload, nil
	}

	result, err, _ := c.renders.Do(key, func() (interface{}, error) {
		renderCtx := context.WithoutCancel(ctx)
		gen := c.generation(key)

		payload, err := render(renderCtx)
		if errors.Is(err, ErrNoStore) {
			return payload, nil
		}
		if err != nil {
			return nil, err
		}
		c.store(renderCtx, key, gen, payload, ttl)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// store writes payload unless key was invalidated after gen was taken.
// Set runs under the lock, so a concurrent Invalidate deletes whatever it wrote.
func (c *PageCache) store(ctx context.Context, key string, gen uint64, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch+c.generations[key] != gen {
		c.logger.Debug("page cache entry invalidated during render, not storing", "key", key)
		return
	}
	if err := c.backend.Set(ctx, key, payload, ttl); err != nil {
		c.logger.Warn("page cache write failed", "key", key, "error", err)
	}
}

func (c *PageCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch + c.generations[key]
}

func renderUncached(ctx context.Context, render RenderFunc) ([]byte, error) {
	payload, err := render(ctx)
	if errors.Is(err, ErrNoStore) {
		return payload, nil
	}
	return payload, err
}

// Invalidate drops key so the next GetOrRender recomputes it
func (c *PageCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	c.generations[key]++
	c.mu.Unlock()

	c.renders.Forget(key)
	if err := c.backend.Delete(ctx, key); err != nil {
		c.logger.Warn("page cache invalidate failed", "key", key, "error", err)
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}

// Clear drops every cached page
func (c *PageCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()

	if err := c.backend.Clear(ctx); err != nil {
		c.logger.Warn("page cache clear failed", "error", err)
		return fmt.Errorf("failed to clear page cache: %w", err)
	}
	return nil
}
