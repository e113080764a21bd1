// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// authServer fakes the auth endpoints with canned handlers per path.
func authServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func envelope(t *testing.T, writer http.ResponseWriter, status int, data any) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{"data": data}))
}

/*
TestClient_Login verifies credential exchange: the identity fields of the
returned Session are decoded from the signed access token, not echoed from
the request.
*/
func TestClient_Login(t *testing.T) {
	accessToken := mintToken(t, "business_owner", time.Hour)

	server := authServer(t, map[string]http.HandlerFunc{
		"/api/v1/auth/login": func(writer http.ResponseWriter, request *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "alex@meetwise.app", body["email"])
			assert.Equal(t, "hunter2!", body["password"])

			envelope(t, writer, http.StatusOK, map[string]string{
				"access_token":  accessToken,
				"refresh_token": "refresh-1",
			})
		},
	})

	client := NewClient(server.URL, discardLogger())
	session, err := client.Login(context.Background(), "alex@meetwise.app", "hunter2!")
	require.NoError(t, err)

	assert.Equal(t, "usr_0001", session.UserID)
	assert.Equal(t, sec.RoleBusinessOwner, session.Role)
	assert.Equal(t, accessToken, session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
}

/*
TestClient_LoginRejected verifies a credential failure surfaces as an error,
never as a half-built session.
*/
func TestClient_LoginRejected(t *testing.T) {
	server := authServer(t, map[string]http.HandlerFunc{
		"/api/v1/auth/login": func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
		},
	})

	client := NewClient(server.URL, discardLogger())
	session, err := client.Login(context.Background(), "alex@meetwise.app", "wrong")

	assert.Error(t, err)
	assert.Nil(t, session)
}

/*
TestClient_Refresh verifies the rotation call and the status mapping that the
Coordinator depends on: 401 and 403 are ErrRefreshRejected, other failures
are ordinary errors.
*/
func TestClient_Refresh(t *testing.T) {
	rotated := mintToken(t, "member", time.Hour)

	testCases := []struct {
		name       string
		status     int
		wantPair   bool
		wantReject bool
	}{
		{name: "rotated", status: http.StatusOK, wantPair: true},
		{name: "revoked token", status: http.StatusUnauthorized, wantReject: true},
		{name: "forbidden token", status: http.StatusForbidden, wantReject: true},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := authServer(t, map[string]http.HandlerFunc{
				"/api/v1/auth/refresh": func(writer http.ResponseWriter, request *http.Request) {
					var body map[string]string
					require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
					assert.Equal(t, "refresh-old", body["refresh_token"])

					if testCase.status != http.StatusOK {
						writer.WriteHeader(testCase.status)
						return
					}
					envelope(t, writer, http.StatusOK, map[string]string{
						"access_token":  rotated,
						"refresh_token": "refresh-new",
					})
				},
			})

			client := NewClient(server.URL, discardLogger())
			pair, err := client.Refresh(context.Background(), "refresh-old")

			switch {
			case testCase.wantPair:
				require.NoError(t, err)
				assert.Equal(t, rotated, pair.AccessToken)
				assert.Equal(t, "refresh-new", pair.RefreshToken)
			case testCase.wantReject:
				assert.ErrorIs(t, err, ErrRefreshRejected)
				assert.Nil(t, pair)
			default:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrRefreshRejected)
				assert.Nil(t, pair)
			}
		})
	}
}

/*
TestClient_RefreshUnreachableServer verifies a connection failure is a plain
transport error, distinct from an explicit rejection.
*/
func TestClient_RefreshUnreachableServer(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", discardLogger())

	pair, err := client.Refresh(context.Background(), "refresh-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRefreshRejected)
	assert.Nil(t, pair)
}

/*
TestClient_Logout verifies the best-effort revocation call: server rejections
are swallowed and an empty token skips the call entirely.
*/
func TestClient_Logout(t *testing.T) {
	var called bool
	server := authServer(t, map[string]http.HandlerFunc{
		"/api/v1/auth/logout": func(writer http.ResponseWriter, _ *http.Request) {
			called = true
			writer.WriteHeader(http.StatusUnauthorized)
		},
	})

	client := NewClient(server.URL, discardLogger())

	assert.NoError(t, client.Logout(context.Background(), "refresh-1"))
	assert.True(t, called)

	called = false
	assert.NoError(t, client.Logout(context.Background(), ""))
	assert.False(t, called)
}
