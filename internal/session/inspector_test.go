// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// tokenWithoutExp builds a structurally valid JWT whose payload omits 'exp'.
func tokenWithoutExp() string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"usr_0001","rol":"member"}`))
	return header + "." + payload + ".signature"
}

/*
TestValidFormat covers the structural check across the malformed-input space.
A token either has three dot-separated, base64url-decodable segments or it is
rejected outright.
*/
func TestValidFormat(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "real signed token", token: mintToken(t, "member", time.Hour), want: true},
		{name: "empty string", token: "", want: false},
		{name: "two segments", token: "aaaa.bbbb", want: false},
		{name: "four segments", token: "aaaa.bbbb.cccc.dddd", want: false},
		{name: "empty header segment", token: ".bbbb.cccc", want: false},
		{name: "empty payload segment", token: "aaaa..cccc", want: false},
		{name: "non-base64 payload", token: "aaaa.???.cccc", want: false},
		{name: "plain text", token: "definitely not a jwt", want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, ValidFormat(testCase.token))
		})
	}
}

/*
TestDecode_ExtractsClaims verifies that identity and expiry come straight out
of the payload and that the role claim is normalized on the way out.
*/
func TestDecode_ExtractsClaims(t *testing.T) {
	token := mintToken(t, "Project Manager", 30*time.Minute)

	decoded := Decode(token)
	require.NotNil(t, decoded)

	assert.Equal(t, "usr_0001", decoded.UserID)
	assert.Equal(t, "alex@meetwise.app", decoded.Email)
	assert.Equal(t, "Alex", decoded.DisplayName)
	assert.Equal(t, sec.RoleProjectManager, decoded.Role)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), decoded.ExpiresAt, 5*time.Second)
}

/*
TestDecode_ReturnsNilOnMalformedInput verifies Decode never panics or errors;
every undecodable input maps to nil.
*/
func TestDecode_ReturnsNilOnMalformedInput(t *testing.T) {
	for _, token := range []string{"", "a.b", "not.a.jwt", "aaaa.bbbb.cccc"} {
		assert.Nil(t, Decode(token), "token %q", token)
	}
}

/*
TestDecode_MissingExpiryIsZero verifies a token without 'exp' decodes with a
zero ExpiresAt, which downstream checks treat as already expired.
*/
func TestDecode_MissingExpiryIsZero(t *testing.T) {
	decoded := Decode(tokenWithoutExp())
	require.NotNil(t, decoded)
	assert.True(t, decoded.ExpiresAt.IsZero())
}

/*
TestExpired covers the fail-closed expiry matrix: malformed and exp-less
tokens are always expired, live tokens are not, and the skew allowance
expires tokens early.
*/
func TestExpired(t *testing.T) {
	testCases := []struct {
		name  string
		token func(t *testing.T) string
		skew  time.Duration
		want  bool
	}{
		{
			name:  "live token well before expiry",
			token: func(t *testing.T) string { return mintToken(t, "member", time.Hour) },
			skew:  DefaultSkew,
			want:  false,
		},
		{
			name:  "already expired token",
			token: func(t *testing.T) string { return mintToken(t, "member", -time.Minute) },
			skew:  DefaultSkew,
			want:  true,
		},
		{
			name:  "inside the skew window",
			token: func(t *testing.T) string { return mintToken(t, "member", 10*time.Second) },
			skew:  30 * time.Second,
			want:  true,
		},
		{
			name:  "just outside the skew window",
			token: func(t *testing.T) string { return mintToken(t, "member", 2*time.Minute) },
			skew:  30 * time.Second,
			want:  false,
		},
		{
			name:  "malformed token",
			token: func(t *testing.T) string { return "garbage" },
			skew:  DefaultSkew,
			want:  true,
		},
		{
			name:  "missing exp claim",
			token: func(t *testing.T) string { return tokenWithoutExp() },
			skew:  DefaultSkew,
			want:  true,
		},
		{
			name:  "empty token",
			token: func(t *testing.T) string { return "" },
			skew:  DefaultSkew,
			want:  true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, Expired(testCase.token(t), testCase.skew))
		})
	}
}
