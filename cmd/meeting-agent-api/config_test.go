// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv_Defaults(t *testing.T) {
	for _, name := range []string{"PORT", "NATS_URL", "PUBSUB_TOPIC", "STORE_BACKEND", "JOBS_BACKEND", "STREAM_WEBHOOK_VALIDATION_DISABLED"} {
		t.Setenv(name, "")
	}

	env := parseEnv()

	assert.Equal(t, "8080", env.Port)
	assert.Equal(t, "nats://localhost:4222", env.NatsURL)
	assert.Equal(t, "meeting-agent-jobs", env.PubSubTopic)
	assert.Equal(t, storeBackendNATS, env.StoreBackend)
	assert.Equal(t, jobsBackendNATS, env.JobsBackend)
	assert.False(t, env.Stream.WebhookValidationDisabled)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NATS_URL", "nats://nats.lfx.svc:4222")
	t.Setenv("PUBSUB_TOPIC", "summaries")
	t.Setenv("STORE_BACKEND", "pg")
	t.Setenv("JOBS_BACKEND", "gcp")
	t.Setenv("STREAM_API_KEY", "stream-key")
	t.Setenv("STREAM_WEBHOOK_VALIDATION_DISABLED", "true")
	t.Setenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL", "local-dev")

	env := parseEnv()

	assert.Equal(t, "9090", env.Port)
	assert.Equal(t, "nats://nats.lfx.svc:4222", env.NatsURL)
	assert.Equal(t, "summaries", env.PubSubTopic)
	assert.Equal(t, storeBackendPostgres, env.StoreBackend)
	assert.Equal(t, jobsBackendPubSub, env.JobsBackend)
	assert.Equal(t, "stream-key", env.Stream.APIKey)
	assert.True(t, env.Stream.WebhookValidationDisabled)
	assert.Equal(t, "local-dev", env.JWT.MockLocalPrincipal)
}

func TestParseBackends(t *testing.T) {
	tests := []struct {
		raw       string
		wantStore string
		wantJobs  string
	}{
		{raw: "", wantStore: storeBackendNATS, wantJobs: jobsBackendNATS},
		{raw: "nats", wantStore: storeBackendNATS, wantJobs: jobsBackendNATS},
		{raw: "postgres", wantStore: storeBackendPostgres, wantJobs: jobsBackendNATS},
		{raw: "pubsub", wantStore: storeBackendNATS, wantJobs: jobsBackendPubSub},
		{raw: "redis", wantStore: storeBackendNATS, wantJobs: jobsBackendNATS},
	}

	for _, tt := range tests {
		t.Run("value "+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.wantStore, parseStoreBackend(tt.raw))
			assert.Equal(t, tt.wantJobs, parseJobsBackend(tt.raw))
		})
	}
}
