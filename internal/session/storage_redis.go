// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetwise/meetwise/internal/platform/constants"
)

// RedisStorage is a [Storage] backend for server-side holders of a session —
// e.g. a worker that calls the Meetwise API on behalf of an integration user
// and shares its session across replicas.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates a Redis-backed Storage. A zero ttl stores records
// without expiration; otherwise records expire with the refresh token's
// lifetime so stale sessions clean themselves up.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

/*
Get retrieves the record stored under key.

Description: Maps redis.Nil to [ErrNotFound] so the [Store] never sees a
driver-specific sentinel.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - string: Raw record
  - error: ErrNotFound or connectivity errors
*/
func (storage *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := storage.client.Get(ctx, constants.RedisPrefixSession+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return value, nil
}

/*
Set replaces the record stored under key.

Parameters:
  - ctx: context.Context
  - key: string
  - value: string

Returns:
  - error: Persistence failures
*/
func (storage *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := storage.client.Set(ctx, constants.RedisPrefixSession+key, value, storage.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
Remove deletes the record stored under key. Missing keys are not an error.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (storage *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := storage.client.Del(ctx, constants.RedisPrefixSession+key).Err(); err != nil {
		return fmt.Errorf("redis_session_remove_failed: %w", err)
	}
	return nil
}
