// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// Memory is an in-process [Cache] bounded by entry count and age.
//
// Beyond size entries the least recently used key is evicted. Entries older
// than the cache-wide maxAge are swept in the background; a shorter ttl given
// to Set is enforced on read.
type Memory[T any] struct {
	entries *expirable.LRU[string, memoryEntry[T]]
	maxAge  time.Duration
	now     func() time.Time
}

// NewMemory creates an empty in-process cache holding at most size entries,
// none of them longer than maxAge.
func NewMemory[T any](size int, maxAge time.Duration) *Memory[T] {
	return &Memory[T]{
		entries: expirable.NewLRU[string, memoryEntry[T]](size, nil, maxAge),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for per-entry expiry. Used by tests
// to step past a ttl.
func (cache *Memory[T]) WithClock(now func() time.Time) *Memory[T] {
	cache.now = now
	return cache
}

func (cache *Memory[T]) Get(_ context.Context, key string) (T, bool, error) {
	entry, found := cache.entries.Get(key)
	if !found {
		var zero T
		return zero, false, nil
	}

	if !cache.now().Before(entry.expiresAt) {
		cache.entries.Remove(key)

		var zero T
		return zero, false, nil
	}

	return entry.value, true, nil
}

func (cache *Memory[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if cache.maxAge > 0 {
		ttl = min(ttl, cache.maxAge)
	}

	cache.entries.Add(key, memoryEntry[T]{value: value, expiresAt: cache.now().Add(ttl)})
	return nil
}

// Len returns the number of stored entries.
func (cache *Memory[T]) Len() int {
	return cache.entries.Len()
}
