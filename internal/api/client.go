// Package api implements the REST client for the Ripple backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// TokenSource supplies the bearer token for authenticated calls.
// session.Manager satisfies it.
type TokenSource interface {
	Token() (string, error)
}

// Client is the REST client. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *observability.APILogger
}

// NewClient creates a Client for the given base URL. A non-positive
// timeout selects a 15 second default; requests never hang forever.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  observability.NewAPILogger(),
	}
}

// errorBody is the backend's error envelope. Some endpoints use "error",
// others "message"; both are accepted.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorBody) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do issues a JSON request and decodes the response into out (when non-nil).
// Transport failures map to NetworkError, non-2xx statuses to ServerRejected
// with the server's message carried verbatim, and a 401 to AuthRequired.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ctx, finish := observability.StartAPISpan(ctx, method, path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		finish(0, err)
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.tokens.Token()
		if err != nil {
			finish(0, err)
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		finish(0, err)
		c.logger.LogError(ctx, method, path, err)
		return models.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	observability.APIRequestLatency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	c.logger.LogRequest(ctx, method, path, resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody errorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		var mapped error
		if resp.StatusCode == http.StatusUnauthorized {
			mapped = models.NewAuthRequiredError(msg)
		} else {
			mapped = models.NewServerRejectedError(resp.StatusCode, msg)
		}
		finish(resp.StatusCode, mapped)
		return mapped
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			finish(resp.StatusCode, err)
			return models.NewNetworkError(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	finish(resp.StatusCode, nil)
	return nil
}
