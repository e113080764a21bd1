// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"sync"
)

// MemoryStorage is a process-local [Storage] backend.
//
// Used by tests and by short-lived tools that should not leave a session
// on disk.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get returns the stored value or [ErrNotFound].
func (storage *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	value, ok := storage.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set replaces the value under key.
func (storage *MemoryStorage) Set(_ context.Context, key, value string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	storage.values[key] = value
	return nil
}

// Remove deletes the value under key. Missing keys are not an error.
func (storage *MemoryStorage) Remove(_ context.Context, key string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	delete(storage.values, key)
	return nil
}
