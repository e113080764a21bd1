// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRefresher is a controllable Refresher that counts its invocations.
type fakeRefresher struct {
	calls atomic.Int64
	delay time.Duration

	mu   sync.Mutex
	pair *TokenPair
	err  error
}

func (fake *fakeRefresher) Refresh(ctx context.Context, _ string) (*TokenPair, error) {
	fake.calls.Add(1)

	if fake.delay > 0 {
		select {
		case <-time.After(fake.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.err != nil {
		return nil, fake.err
	}
	return fake.pair, nil
}

func newCoordinatorUnderTest(t *testing.T, store *Store, fake *fakeRefresher) *Coordinator {
	t.Helper()

	coordinator := NewCoordinator(store, fake, discardLogger())
	coordinator.waitLimit = 2 * time.Second
	coordinator.callTimeout = 2 * time.Second
	return coordinator
}

/*
TestEnsureFresh_FastPathSkipsNetwork verifies that a live token short-circuits
without touching the refresher.
*/
func TestEnsureFresh_FastPathSkipsNetwork(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", time.Hour), "refresh-1")
	fake := &fakeRefresher{}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	assert.True(t, coordinator.EnsureFresh(context.Background()))
	assert.Equal(t, int64(0), fake.calls.Load())
	assert.Equal(t, StateIdle, coordinator.State())
}

/*
TestEnsureFresh_RotatesExpiredSession verifies the success path: the store
holds the rotated pair before EnsureFresh returns, and the coordinator is
back to Idle ready for the next expiry.
*/
func TestEnsureFresh_RotatesExpiredSession(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-old")

	rotatedAccess := mintToken(t, "member", time.Hour)
	fake := &fakeRefresher{pair: &TokenPair{AccessToken: rotatedAccess, RefreshToken: "refresh-new"}}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	require.True(t, coordinator.EnsureFresh(context.Background()))

	assert.Equal(t, rotatedAccess, store.AccessToken())
	assert.Equal(t, "refresh-new", store.RefreshToken())
	assert.Equal(t, int64(1), fake.calls.Load())
	assert.Equal(t, StateIdle, coordinator.State())
}

/*
TestEnsureFresh_CollapsesConcurrentCallers is the core de-duplication
property: many goroutines racing on the same expired token produce exactly
one network call, and every caller observes the same successful outcome.
*/
func TestEnsureFresh_CollapsesConcurrentCallers(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-old")

	rotatedAccess := mintToken(t, "member", time.Hour)
	fake := &fakeRefresher{
		delay: 100 * time.Millisecond,
		pair:  &TokenPair{AccessToken: rotatedAccess, RefreshToken: "refresh-new"},
	}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	const callers = 32
	results := make(chan bool, callers)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			results <- coordinator.EnsureFresh(context.Background())
		}()
	}
	start.Done()

	for i := 0; i < callers; i++ {
		assert.True(t, <-results)
	}
	assert.Equal(t, int64(1), fake.calls.Load())
	assert.Equal(t, rotatedAccess, store.AccessToken())
}

/*
TestEnsureFresh_RejectionClearsSession verifies the terminal failure path: a
server rejection ends the session locally and reports false, with no retry.
*/
func TestEnsureFresh_RejectionClearsSession(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-revoked")
	fake := &fakeRefresher{err: ErrRefreshRejected}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	assert.False(t, coordinator.EnsureFresh(context.Background()))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.RefreshToken())
	assert.Equal(t, int64(1), fake.calls.Load())
}

/*
TestEnsureFresh_NetworkErrorClearsSession verifies an unreachable server is
handled fail-closed like a rejection, distinguished only in telemetry.
*/
func TestEnsureFresh_NetworkErrorClearsSession(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-1")
	fake := &fakeRefresher{err: errors.New("dial tcp: connection refused")}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	assert.False(t, coordinator.EnsureFresh(context.Background()))
	assert.False(t, store.IsAuthenticated())
}

/*
TestEnsureFresh_NoRefreshTokenClearsSession verifies that an expired session
with no refresh token requires login without any network call.
*/
func TestEnsureFresh_NoRefreshTokenClearsSession(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "")
	fake := &fakeRefresher{}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	assert.False(t, coordinator.EnsureFresh(context.Background()))
	assert.Equal(t, int64(0), fake.calls.Load())
	assert.False(t, store.IsAuthenticated())
}

/*
TestEnsureFresh_MalformedRotatedTokenClearsSession verifies that a server
returning an undecodable access token is treated as a failed refresh.
*/
func TestEnsureFresh_MalformedRotatedTokenClearsSession(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-1")
	fake := &fakeRefresher{pair: &TokenPair{AccessToken: "not-a-jwt", RefreshToken: "refresh-new"}}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	assert.False(t, coordinator.EnsureFresh(context.Background()))
	assert.False(t, store.IsAuthenticated())
}

/*
TestEnsureFresh_WaitLimitDoesNotCancelCall verifies the bounded-wait
contract: a caller whose wait window elapses returns false, but the attempt
keeps running and the store still ends up rotated for the next check.
*/
func TestEnsureFresh_WaitLimitDoesNotCancelCall(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-old")

	rotatedAccess := mintToken(t, "member", time.Hour)
	fake := &fakeRefresher{
		delay: 300 * time.Millisecond,
		pair:  &TokenPair{AccessToken: rotatedAccess, RefreshToken: "refresh-new"},
	}
	coordinator := newCoordinatorUnderTest(t, store, fake)
	coordinator.waitLimit = 50 * time.Millisecond

	assert.False(t, coordinator.EnsureFresh(context.Background()))

	// The impatient caller did not clear the session out from under the
	// still-running attempt.
	assert.NotEmpty(t, store.RefreshToken())

	require.Eventually(t, func() bool {
		return store.AccessToken() == rotatedAccess
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, coordinator.EnsureFresh(context.Background()))
	assert.Equal(t, int64(1), fake.calls.Load())
}

/*
TestEnsureFresh_CancelledCallerReturnsFalse verifies a caller whose own
context is cancelled gives up immediately without affecting the attempt.
*/
func TestEnsureFresh_CancelledCallerReturnsFalse(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-old")
	fake := &fakeRefresher{
		delay: 300 * time.Millisecond,
		pair:  &TokenPair{AccessToken: mintToken(t, "member", time.Hour), RefreshToken: "refresh-new"},
	}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, coordinator.EnsureFresh(ctx))
}

/*
TestCoordinator_NewAttemptAfterFailure verifies the state machine returns to
Idle after a failed attempt so a later expiry starts a fresh one.
*/
func TestCoordinator_NewAttemptAfterFailure(t *testing.T) {
	store := newTestStore(t, mintToken(t, "member", -time.Minute), "refresh-1")
	fake := &fakeRefresher{err: errors.New("temporarily unreachable")}
	coordinator := newCoordinatorUnderTest(t, store, fake)

	require.False(t, coordinator.EnsureFresh(context.Background()))
	require.Equal(t, StateIdle, coordinator.State())

	// Log back in, expire again, and the coordinator must be willing to try.
	require.NoError(t, store.SetSession(context.Background(), Session{
		UserID:       "usr_0001",
		AccessToken:  mintToken(t, "member", -time.Minute),
		RefreshToken: "refresh-2",
	}))

	rotated := mintToken(t, "member", time.Hour)
	fake.mu.Lock()
	fake.err = nil
	fake.pair = &TokenPair{AccessToken: rotated, RefreshToken: "refresh-3"}
	fake.mu.Unlock()

	assert.True(t, coordinator.EnsureFresh(context.Background()))
	assert.Equal(t, rotated, store.AccessToken())
	assert.Equal(t, int64(2), fake.calls.Load())
}
