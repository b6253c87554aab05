// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidCredentials indicates the auth service rejected the login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthClient talks to the auth service (token issuance and account
// registration). Both endpoints take form-encoded bodies, not JSON.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewAuthClient creates an auth client for the given base URL
// (e.g. "http://localhost:8000/auth").
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		timeout:    30 * time.Second,
	}
}

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func (a *AuthClient) WithHTTPClient(hc *http.Client) *AuthClient {
	a.httpClient = hc
	return a
}

// Login exchanges credentials for an access token.
func (a *AuthClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	raw, status, err := a.postForm(ctx, a.baseURL+"/token", form)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		detail := detailFrom(raw)
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			if detail != "" {
				return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, detail)
			}
			return "", ErrInvalidCredentials
		}
		return "", &APIError{Status: status, Message: detail}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("auth service returned no token")
	}
	return payload.AccessToken, nil
}

// Register creates a new account.
func (a *AuthClient) Register(ctx context.Context, username, email, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("email", email)
	form.Set("password", password)

	raw, status, err := a.postForm(ctx, a.baseURL+"/register", form)
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		if detail := detailFrom(raw); detail != "" {
			return fmt.Errorf("registration failed: %s", detail)
		}
		return &APIError{Status: status, Message: "registration failed"}
	}
	return nil
}

func (a *AuthClient) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read auth response: %w", err)
	}
	return raw, resp.StatusCode, nil
}
