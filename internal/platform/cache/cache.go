// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides passive, read-through, time-bounded caches for upstream data.

Entries are never invalidated by writes; they only expire. A miss is reported
as ok == false and is never an error, so callers fall through to the source.

Backends:

  - [Memory]: per-process LRU with expiry, the default.
  - [Redis]: JSON values shared between replicas.
  - [Noop]: caches nothing, used in tests and with CACHE_BACKEND=none.
*/
package cache

import (
	"context"
	"time"
)

// Cache stores values of a single type under string keys.
type Cache[T any] interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores value for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
}

// # No-op

// Noop is a [Cache] that never stores anything.
type Noop[T any] struct{}

// NewNoop creates a cache that always misses.
func NewNoop[T any]() Noop[T] {
	return Noop[T]{}
}

func (Noop[T]) Get(context.Context, string) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (Noop[T]) Set(context.Context, string, T, time.Duration) error {
	return nil
}
