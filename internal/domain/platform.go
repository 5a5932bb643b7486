// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// WebhookValidator verifies that a webhook body was produced by the call provider.
type WebhookValidator interface {
	// ValidateSignature checks the signature computed over the raw, unparsed body.
	ValidateSignature(body []byte, signature string) error
	// ValidateAPIKey checks the API key header sent alongside the signature.
	ValidateAPIKey(apiKey string) error
}

// AgentCredentials are what the call provider needs to bind an AI participant.
type AgentCredentials struct {
	// AgentUserID is the call participant identity of the agent.
	AgentUserID string
	// ModelAPIKey is the credential for the AI realtime backend.
	ModelAPIKey string
	// Model is the realtime model name. Empty selects the provider default.
	Model string
}

// CallController commands live call sessions on the call provider.
type CallController interface {
	// ConnectAgent binds an AI participant to the call and returns its session.
	ConnectAgent(ctx context.Context, call models.CallRef, creds AgentCredentials) (AgentSession, error)
	// EndCall terminates the call for every participant.
	EndCall(ctx context.Context, call models.CallRef) error
	IsReady() bool
}

// AgentSession is a connected AI participant.
type AgentSession interface {
	// UpdateSession pushes a new session configuration to the participant.
	UpdateSession(ctx context.Context, instructions string) error
	Close() error
}
