// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

/*
TestNewStore_HydratesPersistedSession verifies that a session written by a
previous process instance is visible immediately after construction.
*/
func TestNewStore_HydratesPersistedSession(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()

	first, err := NewStore(ctx, backend, discardLogger())
	require.NoError(t, err)

	token := mintToken(t, "member", time.Hour)
	require.NoError(t, first.SetSession(ctx, Session{
		UserID:       "usr_0001",
		Email:        "alex@meetwise.app",
		Role:         sec.RoleMember,
		AccessToken:  token,
		RefreshToken: "refresh-1",
	}))

	// A fresh Store over the same backend simulates a restart.
	second, err := NewStore(ctx, backend, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, token, second.AccessToken())
	assert.Equal(t, "refresh-1", second.RefreshToken())
	assert.True(t, second.IsAuthenticated())
}

/*
TestNewStore_DiscardsCorruptedRecord verifies fail-closed hydration: an
unreadable record yields an unauthenticated store and is removed from the
backend, not surfaced as an error.
*/
func TestNewStore_DiscardsCorruptedRecord(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()
	require.NoError(t, backend.Set(ctx, storageKey, "{not json"))

	store, err := NewStore(ctx, backend, discardLogger())
	require.NoError(t, err)

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Current())

	_, err = backend.Get(ctx, storageKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

/*
TestNewStore_DiscardsRecordWithoutAccessToken verifies that a structurally
valid record missing its access token is treated the same as a corrupted one.
*/
func TestNewStore_DiscardsRecordWithoutAccessToken(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()
	require.NoError(t, backend.Set(ctx, storageKey, `{"user_id":"usr_0001"}`))

	store, err := NewStore(ctx, backend, discardLogger())
	require.NoError(t, err)

	assert.False(t, store.IsAuthenticated())
}

/*
TestStore_SetSessionReplacesWholeRecord verifies rotation atomicity at the
read surface: after SetSession both tokens come from the new pair.
*/
func TestStore_SetSessionReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, mintToken(t, "member", time.Hour), "refresh-old")

	rotatedAccess := mintToken(t, "member", 2*time.Hour)
	require.NoError(t, store.SetSession(ctx, Session{
		UserID:       "usr_0001",
		Email:        "alex@meetwise.app",
		Role:         sec.RoleMember,
		AccessToken:  rotatedAccess,
		RefreshToken: "refresh-new",
	}))

	assert.Equal(t, rotatedAccess, store.AccessToken())
	assert.Equal(t, "refresh-new", store.RefreshToken())
}

/*
TestStore_ClearIsIdempotent verifies that clearing twice, or clearing a store
that never held a session, leaves the same observable state with no error.
*/
func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, mintToken(t, "member", time.Hour), "refresh-1")

	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.AccessToken())

	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated())

	empty := newTestStore(t, "", "")
	require.NoError(t, empty.Clear(ctx))
	assert.False(t, empty.IsAuthenticated())
}

/*
TestStore_IsAuthenticatedFailsClosedOnMalformedToken verifies that a present
but structurally invalid access token does not count as authenticated.
*/
func TestStore_IsAuthenticatedFailsClosedOnMalformedToken(t *testing.T) {
	store := newTestStore(t, "garbage-not-a-jwt", "refresh-1")

	assert.NotEmpty(t, store.AccessToken())
	assert.False(t, store.IsAuthenticated())
}

/*
TestStore_CurrentReturnsCopy verifies that mutating the returned snapshot
never leaks back into the store.
*/
func TestStore_CurrentReturnsCopy(t *testing.T) {
	token := mintToken(t, "member", time.Hour)
	store := newTestStore(t, token, "refresh-1")

	snapshot := store.Current()
	require.NotNil(t, snapshot)
	snapshot.AccessToken = "tampered"

	assert.Equal(t, token, store.AccessToken())
}

/*
TestFileStorage_RoundTrip verifies the on-disk backend honors the Storage
contract, including ErrNotFound and idempotent removal.
*/
func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = backend.Get(ctx, storageKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Set(ctx, storageKey, `{"access_token":"abc"}`))

	value, err := backend.Get(ctx, storageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"abc"}`, value)

	require.NoError(t, backend.Remove(ctx, storageKey))
	require.NoError(t, backend.Remove(ctx, storageKey))

	_, err = backend.Get(ctx, storageKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
