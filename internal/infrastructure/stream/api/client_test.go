// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:         "stream-key",
		APISecret:      "stream-secret",
		BaseURL:        baseURL,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		config          Config
		expectedBaseURL string
		expectedTimeout time.Duration
		expectedRetries int
	}{
		{
			name: "with all config provided",
			config: Config{
				APIKey:     "key",
				APISecret:  "secret",
				BaseURL:    "https://custom.stream.example",
				Timeout:    45 * time.Second,
				MaxRetries: 5,
			},
			expectedBaseURL: "https://custom.stream.example",
			expectedTimeout: 45 * time.Second,
			expectedRetries: 5,
		},
		{
			name:            "with minimal config - uses defaults",
			config:          Config{APIKey: "key", APISecret: "secret"},
			expectedBaseURL: BaseURL,
			expectedTimeout: DefaultClientTimeout,
			expectedRetries: DefaultMaxRetries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)
			require.NotNil(t, client)
			assert.Equal(t, tt.expectedBaseURL, client.config.BaseURL)
			assert.Equal(t, tt.expectedTimeout, client.config.Timeout)
			assert.Equal(t, tt.expectedRetries, client.config.MaxRetries)
			assert.True(t, client.IsReady())
		})
	}

	assert.False(t, NewClient(Config{}).IsReady())
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   bool
	}{
		{"network error", 0, errors.New("connection refused"), true},
		{"context cancelled", 0, context.Canceled, false},
		{"deadline exceeded", 0, context.DeadlineExceeded, false},
		{"server error", http.StatusBadGateway, nil, true},
		{"rate limited", http.StatusTooManyRequests, nil, true},
		{"client error", http.StatusBadRequest, nil, false},
		{"not found", http.StatusNotFound, nil, false},
		{"success", http.StatusOK, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldRetry(tt.statusCode, tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	client := NewClient(Config{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2,
	})

	assert.Equal(t, 100*time.Millisecond, client.calculateBackoff(0))
	for attempt := 1; attempt < 10; attempt++ {
		backoff := client.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, backoff, 100*time.Millisecond)
		assert.LessOrEqual(t, backoff, 1250*time.Millisecond)
	}
}

func TestClient_EndCall(t *testing.T) {
	t.Run("posts mark_ended with a server token", func(t *testing.T) {
		var gotPath, gotAPIKey, gotAuthType string
		var gotClaims jwt.MapClaims

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAPIKey = r.URL.Query().Get("api_key")
			gotAuthType = r.Header.Get("stream-auth-type")

			token, err := jwt.Parse(r.Header.Get("Authorization"), func(*jwt.Token) (any, error) {
				return []byte("stream-secret"), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err == nil {
				gotClaims, _ = token.Claims.(jwt.MapClaims)
			}

			assert.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"duration":"1ms"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.EndCall(context.Background(), models.NewMeetingCallRef("meeting-1"))

		require.NoError(t, err)
		assert.Equal(t, "/api/v2/video/call/default/meeting-1/mark_ended", gotPath)
		assert.Equal(t, "stream-key", gotAPIKey)
		assert.Equal(t, "jwt", gotAuthType)
		require.NotNil(t, gotClaims)
		assert.Equal(t, true, gotClaims["server"])
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.EndCall(context.Background(), models.NewMeetingCallRef("meeting-1"))

		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":16,"message":"call does not exist"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.EndCall(context.Background(), models.NewMeetingCallRef("missing"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "call does not exist")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("fails after exhausting retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.EndCall(context.Background(), models.NewMeetingCallRef("meeting-1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("fails without a secret", func(t *testing.T) {
		client := NewClient(Config{APIKey: "key", BaseURL: "http://127.0.0.1:1"})
		err := client.EndCall(context.Background(), models.NewMeetingCallRef("meeting-1"))
		assert.Error(t, err)
	})
}

func TestServerToken(t *testing.T) {
	signed, err := ServerToken("secret")
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, true, claims["server"])

	_, err = ServerToken("")
	assert.Error(t, err)
}

func TestCallToken(t *testing.T) {
	now := time.Now()
	signed, err := CallToken("secret", "agent-1", []string{"default:meeting-1"}, now)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "agent-1", claims["user_id"])
	assert.Equal(t, []any{"default:meeting-1"}, claims["call_cids"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(callTokenTTL), exp.Time, time.Second)

	_, err = CallToken("secret", "", nil, now)
	assert.Error(t, err)
}
