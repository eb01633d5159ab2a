// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis is a [Cache] that stores JSON-encoded values in Redis under a key prefix.
type Redis[T any] struct {
	client goredis.Cmdable
	prefix string
}

// NewRedis creates a Redis-backed cache. prefix namespaces every key
// (see the RedisPrefix constants).
func NewRedis[T any](client goredis.Cmdable, prefix string) *Redis[T] {
	return &Redis[T]{client: client, prefix: prefix}
}

func (cache *Redis[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var value T

	raw, err := cache.client.Get(ctx, cache.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("cache_redis_get_failed: %w", err)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		// A payload from an older shape is treated as a miss and overwritten on the next Set.
		return value, false, nil
	}

	return value, true, nil
}

func (cache *Redis[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache_redis_encode_failed: %w", err)
	}

	if err := cache.client.Set(ctx, cache.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache_redis_set_failed: %w", err)
	}
	return nil
}
