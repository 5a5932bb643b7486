// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

const (
	// BaseURL is the base URL for the Stream video API
	BaseURL = "https://video.stream-io-api.com"
	// DefaultClientTimeout is the default HTTP client timeout for Stream API requests
	DefaultClientTimeout = 30 * time.Second
	// Default retry configuration
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Client is a Stream video API client. It implements [domain.CallController].
type Client struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	config     Config

	mu       sync.Mutex
	sessions map[string]*agentSession
}

// Config holds the configuration for the Stream client
type Config struct {
	APIKey    string
	APISecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: retry configuration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Ensure that Client implements domain.CallController
var _ domain.CallController = (*Client)(nil)

// NewClient creates a new Stream API client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.Timeout,
		},
		config:   config,
		sessions: make(map[string]*agentSession),
	}
}

// IsReady reports whether the client has the credentials it needs.
func (c *Client) IsReady() bool {
	return c.config.APIKey != "" && c.config.APISecret != ""
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(statusCode int, err error) bool {
	if err != nil {
		// Don't retry if context was cancelled
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		// Retry on network/connection errors
		return true
	}

	// Retry on server errors (5xx)
	if statusCode >= 500 && statusCode < 600 {
		return true
	}

	// Retry on rate limiting (429)
	return statusCode == http.StatusTooManyRequests
}

// calculateBackoff calculates the backoff duration for a retry attempt with jitter
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// Add jitter (±25% of backoff duration)
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}

	return backoffWithJitter
}

// doRequest performs a server-authenticated request to the Stream API with
// retry logic. The caller owns the returned response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	token, err := ServerToken(c.config.APISecret)
	if err != nil {
		return nil, err
	}

	endpoint := c.config.BaseURL + path + "?" + url.Values{"api_key": []string{c.config.APIKey}}.Encode()

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)
		req.Header.Set("stream-auth-type", "jwt")

		if attempt == 0 {
			slog.DebugContext(ctx, "making Stream API request", "method", method, "path", path)
		} else {
			slog.DebugContext(ctx, "retrying Stream API request", "method", method, "path", path, "attempt", attempt)
		}

		startTime := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(startTime)

		if err == nil && resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			if lastResp != nil {
				_ = lastResp.Body.Close()
			}
			slog.InfoContext(ctx, "Stream API request completed",
				"method", method,
				"path", path,
				"status", resp.StatusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
			)
			return resp, nil
		}

		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		lastErr, lastResp = err, resp

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}

		if !shouldRetry(statusCode, err) {
			slog.ErrorContext(ctx, "Stream API request failed (not retryable)",
				"method", method,
				"path", path,
				"status", statusCode,
				"attempt", attempt+1,
				logging.ErrKey, err)
			break
		}

		if attempt == c.config.MaxRetries {
			slog.ErrorContext(ctx, "Stream API request failed after all retries",
				"method", method,
				"path", path,
				"status", statusCode,
				"attempts", attempt+1,
				logging.ErrKey, err,
				logging.PriorityCritical())
			break
		}

		backoff := c.calculateBackoff(attempt)
		slog.WarnContext(ctx, "Stream API request failed, retrying",
			"method", method,
			"path", path,
			"status", statusCode,
			"attempt", attempt+1,
			"backoff", backoff.String(),
			logging.ErrKey, err)

		select {
		case <-ctx.Done():
			if lastResp != nil {
				_ = lastResp.Body.Close()
			}
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr != nil {
		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		return nil, fmt.Errorf("request failed after retries: %w", lastErr)
	}

	return lastResp, nil
}

// parseErrorResponse attempts to parse a Stream API error response
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("stream API error (status %d, code %d): %s", statusCode, errResp.Code, errResp.Message)
	}
	return fmt.Errorf("stream API error (status %d): %s", statusCode, string(body))
}
