// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package sec

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewTokenServiceFromKeys(key, "meetwise.app")
}

/*
TestTokenService_GenerateAndVerify verifies the sign/verify round trip and
that the custom identity claims survive it intact.
*/
func TestTokenService_GenerateAndVerify(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateAccessToken(
		"usr_0001", "alex@meetwise.app", "Alex", "project_manager", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "usr_0001", claims.UserID)
	assert.Equal(t, "usr_0001", claims.Subject)
	assert.Equal(t, "alex@meetwise.app", claims.Email)
	assert.Equal(t, "Alex", claims.DisplayName)
	assert.Equal(t, "project_manager", claims.Role)
	assert.Equal(t, "meetwise.app", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

/*
TestTokenService_RejectsExpiredToken verifies that verification enforces the
exp claim.
*/
func TestTokenService_RejectsExpiredToken(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateAccessToken(
		"usr_0001", "alex@meetwise.app", "", "member", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsForeignSignature verifies a token signed by a
different key pair fails verification.
*/
func TestTokenService_RejectsForeignSignature(t *testing.T) {
	issuingService := newTestService(t)
	verifyingService := newTestService(t)

	token, err := issuingService.GenerateAccessToken(
		"usr_0001", "alex@meetwise.app", "", "admin", time.Hour)
	require.NoError(t, err)

	_, err = verifyingService.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsGarbage verifies undecodable input errors cleanly.
*/
func TestTokenService_RejectsGarbage(t *testing.T) {
	service := newTestService(t)

	for _, input := range []string{"", "abc", "a.b.c"} {
		_, err := service.VerifyToken(input)
		assert.Error(t, err, "input %q", input)
	}
}

/*
TestGenerateSecureToken verifies entropy length, URL safety, and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
	assert.NotContains(t, first, "=")
	assert.Len(t, first, 43) // 32 bytes, base64url without padding
}

/*
TestHashToken verifies the digest is deterministic, hex encoded, and never
the identity function.
*/
func TestHashToken(t *testing.T) {
	digest := HashToken("refresh-token-value")

	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashToken("refresh-token-value"))
	assert.NotEqual(t, digest, HashToken("other-token"))
	assert.NotEqual(t, "refresh-token-value", digest)
}
