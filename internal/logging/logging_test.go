// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	ctx := AppendCtx(context.TODO(), slog.String("meeting_id", "abc123"))

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	require.True(t, ok, "expected slog attributes in context")
	require.Len(t, attrs, 1)
	assert.Equal(t, "meeting_id", attrs[0].Key)
	assert.Equal(t, "abc123", attrs[0].Value.String())
}

func TestAppendCtx_SiblingsDoNotShareAttributes(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("event_type", "call.session_started"))
	parent = AppendCtx(parent, slog.String("path", "/webhooks/stream"))

	first := AppendCtx(parent, slog.String("meeting_id", "first"))
	second := AppendCtx(parent, slog.String("meeting_id", "second"))

	firstAttrs := first.Value(slogFields).([]slog.Attr)
	secondAttrs := second.Value(slogFields).([]slog.Attr)
	parentAttrs := parent.Value(slogFields).([]slog.Attr)

	assert.Len(t, parentAttrs, 2)
	assert.Equal(t, "first", firstAttrs[2].Value.String())
	assert.Equal(t, "second", secondAttrs[2].Value.String())
}

func TestNewHandler_IncludesContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := AppendCtx(context.Background(), slog.String("meeting_id", "abc123"))
	logger.With("component", "test").InfoContext(ctx, "meeting transitioned", PriorityCritical())

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "meeting transitioned", record["msg"])
	assert.Equal(t, "abc123", record["meeting_id"])
	assert.Equal(t, "test", record["component"])
	assert.Equal(t, "critical", record["priority"])
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelDebug},
		{"verbose", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, levelFromEnv(tt.value))
		})
	}
}

func TestPriority(t *testing.T) {
	attr := Priority("high")
	assert.Equal(t, "priority", attr.Key)
	assert.Equal(t, "high", attr.Value.String())
	assert.Equal(t, "critical", PriorityCritical().Value.String())
}
