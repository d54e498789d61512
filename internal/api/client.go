package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LoginLocation is the location scheduled after an authentication failure
// on a safe request.
const LoginLocation = "/login"

// Config holds HTTP client configuration
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RedirectDelay time.Duration
}

// Client wraps outgoing requests to the expense backend. It attaches the
// bearer credential, logs request/response diagnostics and intercepts
// 401/403 responses: credentials are cleared, GET requests (or responses
// carrying an explicit redirect hint) schedule a login redirect after a
// short delay, DELETE and other mutating requests return the error to the
// caller.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *zap.Logger
	redirectDelay time.Duration

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
	onRedirect     func(location string)
}

// NewClient creates a new backend API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	redirectDelay := cfg.RedirectDelay
	if redirectDelay == 0 {
		redirectDelay = time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
		redirectDelay: redirectDelay,
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers the hook invoked whenever a request yields
// 401/403. The session store uses it to force a logout.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// OnRedirect registers the hook invoked, after the configured delay, when
// an authentication failure requires navigating to the login view.
func (c *Client) OnRedirect(fn func(location string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRedirect = fn
}

// errorBody is the JSON shape of backend error responses.
type errorBody struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// do executes one request against the backend and returns the response
// body for 2xx statuses. Non-2xx statuses map to *APIError.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token := c.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Bool("token_present", token != ""))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("request failed: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("API response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    eb.Message,
		Method:     method,
		Path:       path,
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.handleAuthFailure(method, path, eb)
	}

	return nil, apiErr
}

// handleAuthFailure clears credentials and decides whether a login
// redirect is scheduled. DELETE requests never redirect so the caller can
// render an inline message; GET requests and explicit redirect hints do,
// after a delay that keeps any shown message visible; other mutating
// methods leave the decision to the caller.
func (c *Client) handleAuthFailure(method, path string, eb errorBody) {
	c.mu.RLock()
	onUnauthorized := c.onUnauthorized
	onRedirect := c.onRedirect
	c.mu.RUnlock()

	if eb.Message != "" {
		c.logger.Warn("Authentication error",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("message", eb.Message))
	}

	if onUnauthorized != nil {
		onUnauthorized()
	}

	if method == http.MethodDelete {
		c.logger.Debug("DELETE request failed, not redirecting",
			zap.String("path", path))
		return
	}

	if method == http.MethodGet || eb.Redirect == LoginLocation {
		if onRedirect != nil {
			time.AfterFunc(c.redirectDelay, func() {
				onRedirect(LoginLocation)
			})
		}
	}
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// sendJSON issues a request with a JSON body and optionally decodes the
// JSON response into out.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	data, err := c.do(ctx, method, path, "application/json", body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// delete issues a DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, "", nil)
	return err
}
