// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// # Opaque Tokens

// GenerateSecureToken returns a URL-safe random token with byteLength bytes
// of entropy. Used for refresh tokens and password reset tokens.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken returns the hex-encoded SHA-256 digest of an opaque token.
//
// # Why hash at all?
//
// Refresh tokens are bearer credentials. Storing only their digest means a
// leaked sessions table cannot be replayed against the API.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
