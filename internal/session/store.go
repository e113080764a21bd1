// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

// storageKey is the single key under which the whole Session record lives.
// Whole-record replacement is what makes token rotation atomic.
const storageKey = "meetwise:session"

// Store is the single source of truth for "is a user logged in".
//
// # Concurrency
//
// Reads are served synchronously from an in-memory snapshot guarded by an
// RWMutex. Writes persist through the [Storage] port and replace the snapshot
// under the same write lock, so a reader can never observe a new access token
// paired with an old refresh token.
type Store struct {
	storage Storage
	log     *slog.Logger

	mu      sync.RWMutex
	current *Session
}

// NewStore constructs a Store and hydrates its snapshot from the backend.
//
// # Fail Closed
//
// A corrupted or partially written record is treated as "no session": it is
// logged, removed best-effort, and the store starts unauthenticated. Only a
// real backend failure (e.g. Redis unreachable) is returned as an error.
func NewStore(ctx context.Context, storage Storage, logger *slog.Logger) (*Store, error) {
	store := &Store{storage: storage, log: logger}

	raw, err := storage.Get(ctx, storageKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return store, nil
		}
		return nil, err
	}

	record := &Session{}
	if err := json.Unmarshal([]byte(raw), record); err != nil || record.AccessToken == "" {
		logger.Warn("session_record_corrupted_discarding")
		_ = storage.Remove(ctx, storageKey)
		return store, nil
	}

	store.current = record
	return store, nil
}

// # Reads

// AccessToken returns the current access token, or "" when unauthenticated.
func (store *Store) AccessToken() string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.current == nil {
		return ""
	}
	return store.current.AccessToken
}

// RefreshToken returns the current refresh token, or "" when unauthenticated.
func (store *Store) RefreshToken() string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.current == nil {
		return ""
	}
	return store.current.RefreshToken
}

// Current returns a read-only copy of the last-known identity without any
// network access, or nil when no session is established.
func (store *Store) Current() *Session {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.current == nil {
		return nil
	}
	snapshot := *store.current
	return &snapshot
}

// IsAuthenticated reports whether a structurally valid access token is held.
// A present but malformed token does not count (fail closed).
func (store *Store) IsAuthenticated() bool {
	token := store.AccessToken()
	return token != "" && ValidFormat(token)
}

// # Writes

/*
SetSession atomically overwrites the persisted session record.

Description: All fields are replaced together — the backend sees one
whole-record write and in-memory readers see the old or the new session,
never a mix. Invoked only by the [Coordinator] (rotation) and the
login flow.

Parameters:
  - ctx: context.Context
  - next: Session

Returns:
  - error: Backend persistence failures
*/
func (store *Store) SetSession(ctx context.Context, next Session) error {
	encoded, err := json.Marshal(next)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.storage.Set(ctx, storageKey, string(encoded)); err != nil {
		return err
	}

	store.current = &next
	return nil
}

/*
Clear removes the persisted session.

Description: Idempotent — clearing an already empty store is a no-op with
the same observable state. Local clearing is the logout guarantee; it never
depends on any server call.

Parameters:
  - ctx: context.Context

Returns:
  - error: Backend removal failures
*/
func (store *Store) Clear(ctx context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.storage.Remove(ctx, storageKey); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	store.current = nil
	return nil
}
