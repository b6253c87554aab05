// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Farqad backend: the NLP answer
// endpoints and the auth service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/farqad/farqad-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAuthFailed indicates the backend rejected the request (401/403).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the backend returned 429.
	ErrRateLimited = errors.New("rate limited by backend")

	// ErrServerError indicates a 5xx response.
	ErrServerError = errors.New("backend server error")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
)

// APIError is a backend error with its HTTP status attached.
type APIError struct {
	Status  int
	Message string
	wrapped error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

// Is lets errors.Is match the sentinel category.
func (e *APIError) Is(target error) bool {
	return e.wrapped == target
}

// =============================================================================
// CLIENT
// =============================================================================

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 3
	maxResponseBytes  = 10 << 20 // 10 MB

	backoffBase = 500 * time.Millisecond
	backoffCap  = 10 * time.Second
)

// Shared pooled transport. Every Client reuses it so connections are
// kept alive across requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Client calls the NLP answer endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter
	authToken  string
}

// NewClient creates a client for the given base URL
// (e.g. "http://localhost:8000").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: sharedHTTPClient,
		maxRetries: defaultMaxRetries,
		timeout:    defaultTimeout,
		// The backend's NLP pipeline is expensive; keep at most two
		// requests per second regardless of how fast sends arrive.
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// WithMaxRetries sets how many times a retryable failure is retried.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithAuthToken attaches a bearer token to every request. An empty
// token leaves requests anonymous.
func (c *Client) WithAuthToken(token string) *Client {
	c.authToken = token
	return c
}

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// =============================================================================
// REQUESTS
// =============================================================================

// DocumentAnswerRequest is the body of the document-mode answer call.
type DocumentAnswerRequest struct {
	Text                string              `json:"text"`
	Limit               int                 `json:"limit"`
	FileID              string              `json:"file_id"`
	ConversationHistory []model.HistoryTurn `json:"conversation_history"`
	AnalysisMode        bool                `json:"analysis_mode"`
	DirectAnswer        bool                `json:"direct_answer"`
}

// GeneralAnswerRequest is the body of the general-mode answer call.
type GeneralAnswerRequest struct {
	Text                string              `json:"text"`
	ConversationHistory []model.HistoryTurn `json:"conversation_history"`
	ProjectID           string              `json:"project_id"`
}

// AnswerResponse is what both answer endpoints return.
type AnswerResponse struct {
	Answer  string `json:"answer"`
	Context string `json:"context,omitempty"`
}

// DocumentAnswer asks the indexed-document endpoint for an answer
// grounded in the focused document.
func (c *Client) DocumentAnswer(ctx context.Context, projectID string, req DocumentAnswerRequest) (*AnswerResponse, error) {
	endpoint := fmt.Sprintf("%s/api/v1/nlp/index/answer/%s", c.baseURL, url.PathEscape(projectID))
	return c.postAnswer(ctx, endpoint, req)
}

// GeneralAnswer asks the general chat endpoint.
func (c *Client) GeneralAnswer(ctx context.Context, req GeneralAnswerRequest) (*AnswerResponse, error) {
	endpoint := c.baseURL + "/api/v1/nlp/general/answer"
	return c.postAnswer(ctx, endpoint, req)
}

// postAnswer sends the request with retries. Rate limits and server
// errors back off exponentially; everything else fails immediately.
func (c *Client) postAnswer(ctx context.Context, endpoint string, body any) (*AnswerResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.doRequest(ctx, endpoint, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) (*AnswerResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorForStatus(resp.StatusCode, raw)
	}

	var answer AnswerResponse
	if err := json.Unmarshal(raw, &answer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &answer, nil
}

// errorForStatus maps a non-200 response to a typed error. The body's
// detail field, when present, becomes the message.
func errorForStatus(status int, body []byte) error {
	apiErr := &APIError{Status: status, Message: detailFrom(body)}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.wrapped = ErrAuthFailed
	case status == http.StatusTooManyRequests:
		apiErr.wrapped = ErrRateLimited
	case status >= 500:
		apiErr.wrapped = ErrServerError
	}
	return apiErr
}

// detailFrom extracts the backend's error message. FastAPI-style bodies
// carry it in a detail field.
func detailFrom(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return ""
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError)
}

// calculateBackoff returns the delay before the given retry attempt:
// 500ms base, doubling, capped at 10s.
func calculateBackoff(attempt int) time.Duration {
	backoff := backoffBase
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= backoffCap {
			return backoffCap
		}
	}
	return backoff
}
