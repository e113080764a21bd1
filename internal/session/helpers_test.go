// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// Shared RSA key for the whole package; generating one per test is wasteful.
var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return sec.NewTokenServiceFromKeys(testKey, "meetwise.app")
}

// mintToken signs a real access token whose expiry is now+timeToLive.
// A negative timeToLive produces an already expired token.
func mintToken(t *testing.T, role string, timeToLive time.Duration) string {
	t.Helper()

	token, err := testTokenService(t).GenerateAccessToken(
		"usr_0001", "alex@meetwise.app", "Alex", role, timeToLive)
	require.NoError(t, err)
	return token
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore builds an authenticated Store over in-memory storage.
func newTestStore(t *testing.T, accessToken, refreshToken string) *Store {
	t.Helper()

	store, err := NewStore(context.Background(), NewMemoryStorage(), discardLogger())
	require.NoError(t, err)

	if accessToken != "" {
		err = store.SetSession(context.Background(), Session{
			UserID:       "usr_0001",
			Email:        "alex@meetwise.app",
			Role:         sec.RoleMember,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		})
		require.NoError(t, err)
	}
	return store
}
