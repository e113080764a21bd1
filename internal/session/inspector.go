// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// # Token Inspection
//
// Everything in this file is stateless and makes zero network calls. The
// client cannot hold the RS256 verification key, so the signature is NOT
// checked here — signature trust is delegated to the server on every
// authenticated request. These checks only exist to avoid presenting tokens
// the server is guaranteed to reject.

// unverifiedParser decodes claims without validating them; expiry policy is
// applied explicitly in [Expired] so clock skew is under our control.
var unverifiedParser = jwt.NewParser(jwt.WithoutClaimsValidation())

// ValidFormat reports whether token has the three dot-separated JWT segments
// with base64url-decodable header and payload.
func ValidFormat(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}

	for _, segment := range parts[:2] {
		if segment == "" {
			return false
		}
		if _, err := base64.RawURLEncoding.DecodeString(segment); err != nil {
			return false
		}
	}
	return true
}

// Decode extracts the payload of a JWT into a [DecodedToken].
//
// It returns nil on ANY malformed input rather than an error, so routine
// expiry checks never need error handling. Role claims are normalized to the
// canonical set on the way out.
func Decode(token string) *DecodedToken {
	claims := &sec.AuthClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	decoded := &DecodedToken{
		UserID:      claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        sec.NormalizeRole(claims.Role),
	}
	if claims.ExpiresAt != nil {
		decoded.ExpiresAt = claims.ExpiresAt.Time
	}
	return decoded
}

// Expired reports whether token should be treated as expired.
//
// # Fail Closed
//
// A token that cannot be decoded, or that carries no 'exp' claim, is expired.
// The skew allowance expires tokens EARLY: a token within skew of its real
// expiry is not worth presenting, since the server may already reject it by
// the time the request arrives.
func Expired(token string, skew time.Duration) bool {
	decoded := Decode(token)
	if decoded == nil || decoded.ExpiresAt.IsZero() {
		return true
	}
	return !time.Now().Before(decoded.ExpiresAt.Add(-skew))
}
