// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"log/slog"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// # Decisions

// Decision is the Gate's verdict for a protected operation.
//
// The Gate decides; it never navigates. Acting on a decision (redirecting to
// a login entry point, rendering, showing a default landing page) belongs to
// the caller, which keeps this core pure and directly testable.
type Decision int

const (
	// DecisionAuthorized: render/proceed.
	DecisionAuthorized Decision = iota

	// DecisionUnauthorized: no usable session — send the user to login.
	DecisionUnauthorized

	// DecisionForbidden: authenticated but lacking the required role — send
	// to a default landing page, NOT to login.
	DecisionForbidden
)

// String returns the decision name for logs.
func (decision Decision) String() string {
	switch decision {
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// # Gate

// Gate guards protected operations by orchestrating the Store, the Inspector
// and the Coordinator.
//
// Side effects are confined to the Coordinator it delegates to — the Gate
// itself never mutates the Session.
type Gate struct {
	store       *Store
	coordinator *Coordinator
	log         *slog.Logger
}

// NewGate constructs a Gate over an existing store and coordinator.
func NewGate(store *Store, coordinator *Coordinator, logger *slog.Logger) *Gate {
	return &Gate{store: store, coordinator: coordinator, log: logger}
}

/*
Evaluate decides whether the current session may enter a protected operation.

Description: The evaluation is bounded — its worst case is the Coordinator's
wait limit — so a caller showing a "checking" indicator never hangs.

Flow:
 1. No token at all: Unauthorized immediately. No network call is wasted on
    a session that was never established.
 2. Token present and not expired: apply the role requirement — Authorized
    or Forbidden.
 3. Token present but expired (or malformed, treated identically): one
    silent refresh via the Coordinator; on success re-check roles against
    the rotated session, on failure Unauthorized (the Coordinator already
    cleared the store on rejection).

Parameters:
  - ctx: context.Context
  - required: zero or more acceptable roles; empty means any authenticated
    session is sufficient

Returns:
  - Decision: Authorized, Unauthorized, or Forbidden
*/
func (gate *Gate) Evaluate(ctx context.Context, required ...sec.Role) Decision {
	token := gate.store.AccessToken()
	if token == "" {
		return DecisionUnauthorized
	}

	if !Expired(token, gate.coordinator.skew) {
		return gate.authorize(required)
	}

	if !gate.coordinator.EnsureFresh(ctx) {
		gate.log.Info("gate_refresh_failed_requiring_login")
		return DecisionUnauthorized
	}

	return gate.authorize(required)
}

// authorize applies the role requirement to the current session snapshot.
func (gate *Gate) authorize(required []sec.Role) Decision {
	current := gate.store.Current()
	if current == nil || current.AccessToken == "" {
		return DecisionUnauthorized
	}

	if len(required) == 0 || HasAnyRole(current, required) {
		return DecisionAuthorized
	}
	return DecisionForbidden
}
