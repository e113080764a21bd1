// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

/*
Package session implements the client-side authentication lifecycle for
programs that hold a Meetwise identity: CLI tools, desktop agents, and
server-side integrations calling the REST API on behalf of a user.

Architecture:

  - Store: Durable, atomically replaced persistence of the current [Session].
  - Inspector: Stateless JWT structure and expiry checks — zero network calls.
  - Coordinator: Silent token refresh, collapsed to at most one in-flight
    network call no matter how many callers race on the same expired token.
  - Gate: Pure allow/deny/forbid decisions for protected operations.
  - Client: HTTP transport to the Meetwise auth endpoints.

Every ambiguous condition in this package resolves to the least-privileged
outcome: a token that cannot be decoded is expired, a session that cannot be
read does not exist, a refresh that cannot complete requires a new login.
*/
package session

import (
	"context"
	"errors"
	"time"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// # Errors

var (
	// ErrNotFound is returned by a [Storage] backend when no record exists
	// under the requested key.
	ErrNotFound = errors.New("session: record not found")

	// ErrRefreshRejected signals that the server explicitly refused the
	// refresh token (revoked or expired). Terminal for the current session.
	ErrRefreshRejected = errors.New("session: refresh token rejected by server")
)

// # Records

// Session is the authenticated identity currently recognized by this client.
//
// # Invariant
//
// If AccessToken is empty, the session is unauthenticated regardless of any
// other field. The [Store] exclusively owns the persisted Session; every other
// component receives read-only copies.
type Session struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	DisplayName  string   `json:"display_name,omitempty"`
	Role         sec.Role `json:"role"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// DecodedToken is an ephemeral view of a JWT payload.
//
// It is recomputed from the raw token string on every inspection and never
// cached independently, so it can never go stale relative to its source.
type DecodedToken struct {
	UserID      string
	Email       string
	DisplayName string
	Role        sec.Role

	// ExpiresAt is the 'exp' claim. Zero when the claim is absent, which
	// every consumer treats as already expired.
	ExpiresAt time.Time
}

// TokenPair is a rotated access/refresh token pair returned by the server.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// # Persistence Port

// Storage is the key-value port behind the [Store].
//
// Implementations must make Set a whole-value replacement and must return
// [ErrNotFound] from Get when the key is absent. Remove on a missing key is
// not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
