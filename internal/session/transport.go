// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

// defaultHTTPTimeout bounds any single auth endpoint call.
const defaultHTTPTimeout = 10 * time.Second

// Client talks to the Meetwise auth endpoints. It implements [Refresher].
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient constructs a Client for the API at baseURL (no trailing slash).
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        logger,
	}
}

// # Wire Shapes
//
// These mirror the server's respond envelopes exactly.

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type loginPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

/*
Login exchanges credentials for an initial [Session].

Description: This is the external login collaborator of the lifecycle — on
success the caller hands the returned Session to [Store.SetSession]. The
identity fields are decoded from the access token itself so the session can
never disagree with what the server signed.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Transport-ready session
  - error: Rejection or connectivity errors
*/
func (client *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var payload loginPayload
	status, err := client.post(ctx, "/api/v1/auth/login", body, &payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("session: login rejected (status %d)", status)
	}

	decoded := Decode(payload.AccessToken)
	if decoded == nil {
		return nil, fmt.Errorf("session: login returned malformed access token")
	}

	return &Session{
		UserID:       decoded.UserID,
		Email:        decoded.Email,
		DisplayName:  decoded.DisplayName,
		Role:         decoded.Role,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

/*
Refresh exchanges a refresh token for a rotated token pair.

Description: Safe to call even with a skewed local clock — expiry is
ultimately judged by the server; the client-side check only avoids
unnecessary calls.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: Rotated tokens
  - error: [ErrRefreshRejected] on an explicit 401/403, otherwise transport errors
*/
func (client *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var pair TokenPair
	status, err := client.post(ctx, "/api/v1/auth/refresh", body, &pair)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		return &pair, nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, ErrRefreshRejected
	default:
		return nil, fmt.Errorf("session: unexpected refresh status %d", status)
	}
}

/*
Logout revokes the refresh token server-side, best effort.

Description: Fail-safe logout — the caller clears the local [Store]
unconditionally; this call merely invalidates the token for everyone else.
Errors are logged, never propagated as session state.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - error: Connectivity errors, for the caller's telemetry only
*/
func (client *Client) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	body := map[string]string{"refresh_token": refreshToken}
	status, err := client.post(ctx, "/api/v1/auth/logout", body, nil)
	if err != nil {
		client.log.Warn("logout_server_call_failed", slog.Any("error", err))
		return err
	}
	if status >= 400 {
		client.log.Warn("logout_server_call_rejected", slog.Int("status", status))
	}
	return nil
}

// # Shared Identity Helper

// RoleOf is a convenience for callers that only need the canonical role of
// the current token holder.
func RoleOf(current *Session) sec.Role {
	if current == nil {
		return sec.RoleMember
	}
	return sec.NormalizeRole(string(current.Role))
}

// post sends a JSON body and decodes the success envelope's data into out.
// The HTTP status is always returned so callers can map rejections; out is
// only populated on 2xx.
func (client *Client) post(ctx context.Context, path string, body any, out any) (int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("session: failed to encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("session: failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return 0, fmt.Errorf("session: request failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if out == nil || response.StatusCode >= 300 {
		return response.StatusCode, nil
	}

	var envelope dataEnvelope
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return response.StatusCode, fmt.Errorf("session: failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return response.StatusCode, fmt.Errorf("session: failed to decode payload: %w", err)
	}
	return response.StatusCode, nil
}
