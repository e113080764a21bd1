// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// # Coordination Constraints

const (
	// DefaultSkew is the clock-skew allowance applied to expiry checks.
	// Tokens within this window of their real expiry are refreshed early.
	DefaultSkew = 30 * time.Second

	// DefaultWaitLimit bounds how long any single caller blocks on a shared
	// refresh before independently reporting failure. The UI/tool above us
	// must never hang indefinitely on a loading state.
	DefaultWaitLimit = 5 * time.Second

	// DefaultCallTimeout bounds the refresh network call itself. It is
	// deliberately longer than DefaultWaitLimit: a caller giving up does not
	// cancel the call, which may still land and update the store.
	DefaultCallTimeout = 10 * time.Second
)

// Refresher performs the silent-refresh network call.
// Implemented by [*Client]; tests substitute fakes.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// # Attempt State Machine

// AttemptState tags the lifecycle of a refresh attempt:
// Idle -> InFlight -> {Succeeded, Failed} -> Idle.
type AttemptState int

const (
	StateIdle AttemptState = iota
	StateInFlight
	StateSucceeded
	StateFailed
)

// attempt is the single shared handle all concurrent callers await.
// Fields other than done are written before done is closed and read only
// after, so the channel provides the happens-before edge.
type attempt struct {
	startedAt time.Time
	done      chan struct{}
	state     AttemptState
	ok        bool
}

// finish records the terminal state and wakes every waiter.
func (a *attempt) finish(ok bool) {
	a.ok = ok
	a.state = StateSucceeded
	if !ok {
		a.state = StateFailed
	}
	close(a.done)
}

// # Coordinator

// Coordinator performs at-most-one concurrent silent token refresh,
// de-duplicating callers racing on the same expired token.
//
// # Ordering
//
// The rotated session is written to the [Store] BEFORE any waiter is woken:
// once EnsureFresh returns true, Store.AccessToken() already reflects the
// new value.
type Coordinator struct {
	store     *Store
	refresher Refresher
	log       *slog.Logger

	skew        time.Duration
	waitLimit   time.Duration
	callTimeout time.Duration

	mu      sync.Mutex
	current *attempt
}

// NewCoordinator constructs a Coordinator with the default timing policy.
func NewCoordinator(store *Store, refresher Refresher, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:       store,
		refresher:   refresher,
		log:         logger,
		skew:        DefaultSkew,
		waitLimit:   DefaultWaitLimit,
		callTimeout: DefaultCallTimeout,
	}
}

// State reports the current attempt state. Mostly useful for tests and
// diagnostics; callers coordinate through [Coordinator.EnsureFresh] alone.
func (coordinator *Coordinator) State() AttemptState {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	if coordinator.current == nil {
		return StateIdle
	}
	return coordinator.current.state
}

/*
EnsureFresh guarantees a usable access token or reports that login is required.

Description: The core correctness property is that refresh storms collapse
into one request. The first caller to find the token expired starts the
attempt; everyone else joins it and awaits the same result. There is no
retry beyond one attempt per expiry event — a failed refresh always means
"require login".

Flow:
 1. Valid, unexpired token: return true immediately, no network call.
 2. Expired, no attempt in flight: start the single attempt.
 3. Expired, attempt in flight: join it instead of issuing a second call.

Bounded wait: a caller whose wait window or context elapses returns false
WITHOUT cancelling the underlying call and WITHOUT clearing the session —
the call may yet succeed and update the store for the next check.

Parameters:
  - ctx: context.Context (caller's wait, not the network call's lifetime)

Returns:
  - bool: true when the store now holds a fresh token
*/
func (coordinator *Coordinator) EnsureFresh(ctx context.Context) bool {

	// Fast path: nothing to do while the current token is still usable.
	if token := coordinator.store.AccessToken(); token != "" && !Expired(token, coordinator.skew) {
		return true
	}

	// Join the in-flight attempt, or become the one that starts it.
	coordinator.mu.Lock()
	shared := coordinator.current
	if shared == nil {
		shared = &attempt{startedAt: time.Now(), done: make(chan struct{}), state: StateInFlight}
		coordinator.current = shared
		go coordinator.execute(shared)
	}
	coordinator.mu.Unlock()

	waitTimer := time.NewTimer(coordinator.waitLimit)
	defer waitTimer.Stop()

	select {
	case <-shared.done:
		return shared.ok
	case <-waitTimer.C:
		coordinator.log.Warn("refresh_wait_timeout",
			slog.Duration("waited", coordinator.waitLimit),
		)
		return false
	case <-ctx.Done():
		return false
	}
}

// execute runs the single network refresh on behalf of every joined caller.
//
// It deliberately uses a detached context: waiters abandoning the attempt
// must not cancel the call out from under the others.
func (coordinator *Coordinator) execute(shared *attempt) {
	ctx, cancel := context.WithTimeout(context.Background(), coordinator.callTimeout)
	defer cancel()

	ok := coordinator.refreshOnce(ctx)

	// Reset to Idle first so a future expiry can start a fresh attempt,
	// then wake the waiters. The store write already happened inside
	// refreshOnce, so resolution never races the rotation.
	coordinator.mu.Lock()
	coordinator.current = nil
	coordinator.mu.Unlock()

	shared.finish(ok)
}

// refreshOnce performs the rotation and converts every failure into false.
// No error crosses this boundary into the Gate.
func (coordinator *Coordinator) refreshOnce(ctx context.Context) bool {
	refreshToken := coordinator.store.RefreshToken()
	if refreshToken == "" {
		coordinator.log.Warn("refresh_skipped_no_token")
		_ = coordinator.store.Clear(ctx)
		return false
	}

	pair, err := coordinator.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		// An explicit rejection and an unreachable server both end the
		// session (fail closed), but they are distinct events in telemetry.
		if errors.Is(err, ErrRefreshRejected) {
			coordinator.log.Warn("refresh_rejected", slog.Any("error", err))
		} else {
			coordinator.log.Error("refresh_network_error", slog.Any("error", err))
		}
		_ = coordinator.store.Clear(ctx)
		return false
	}

	// The rotated identity is recomputed from the new access token itself,
	// never trusted from a side channel.
	decoded := Decode(pair.AccessToken)
	if decoded == nil {
		coordinator.log.Error("refresh_returned_malformed_token")
		_ = coordinator.store.Clear(ctx)
		return false
	}

	rotated := Session{
		UserID:       decoded.UserID,
		Email:        decoded.Email,
		DisplayName:  decoded.DisplayName,
		Role:         decoded.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}

	if err := coordinator.store.SetSession(ctx, rotated); err != nil {
		coordinator.log.Error("refresh_store_write_failed", slog.Any("error", err))
		return false
	}

	coordinator.log.Info("session_refreshed", slog.String("user_id", rotated.UserID))
	return true
}
