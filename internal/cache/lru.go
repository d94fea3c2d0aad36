package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultLRUSize bounds the in-process cache when no size is configured
const DefaultLRUSize = 1000

type lruEntry struct {
	expiresAt time.Time
	value     []byte
}

// LRUBackend is an in-process Backend.
// Entries are evicted by recency when the cache is full and ignored once expired.
type LRUBackend struct {
	entries *lru.Cache[string, lruEntry]
	now     func() time.Time
}

// NewLRUBackend creates an in-process backend holding at most size entries
func NewLRUBackend(size int) (*LRUBackend, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	entries, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &LRUBackend{entries: entries, now: time.Now}, nil
}

// Get implements Backend
func (b *LRUBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := b.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !b.now().Before(entry.expiresAt) {
		b.entries.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Backend
func (b *LRUBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.entries.Add(key, lruEntry{value: value, expiresAt: b.now().Add(ttl)})
	return nil
}

// Delete implements Backend
func (b *LRUBackend) Delete(ctx context.Context, key string) error {
	b.entries.Remove(key)
	return nil
}

// Clear implements Backend
func (b *LRUBackend) Clear(ctx context.Context) error {
	b.entries.Purge()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet read
func (b *LRUBackend) Len() int {
	return b.entries.Len()
}
