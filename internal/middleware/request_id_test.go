// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/constants"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		incomingID string
	}{
		{name: "keeps the caller's request id", incomingID: "req-123"},
		{name: "assigns a request id", incomingID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
			if tt.incomingID != "" {
				req.Header.Set(constants.RequestIDHeader, tt.incomingID)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(constants.RequestIDHeader))
			if tt.incomingID != "" {
				assert.Equal(t, tt.incomingID, seen)
			} else {
				_, err := uuid.Parse(seen)
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(logging.NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	handler := RequestIDMiddleware()(RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/meetings/m-1", nil)
	req.Header.Set(constants.RequestIDHeader, "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var response map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &response))
	assert.Equal(t, "HTTP response", response["msg"])
	assert.Equal(t, "WARN", response["level"])
	assert.Equal(t, float64(http.StatusNotFound), response["status"])
	assert.Equal(t, "/meetings/m-1", response["path"])
	assert.Equal(t, "req-123", response["request_id"])

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, constants.LivezPath, nil))
	assert.Empty(t, buf.String())
}
