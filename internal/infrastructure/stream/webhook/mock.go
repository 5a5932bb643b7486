// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"fmt"
	"log/slog"
)

// MockWebhookValidator is a mock implementation that always passes signature
// validation, for local development against a provider without a shared secret.
type MockWebhookValidator struct{}

// NewMockWebhookValidator creates a new mock webhook validator
func NewMockWebhookValidator() *MockWebhookValidator {
	return &MockWebhookValidator{}
}

// ValidateSignature always returns nil for mock mode
func (m *MockWebhookValidator) ValidateSignature(body []byte, signature string) error {
	slog.Debug("Mock webhook validator - bypassing signature validation")
	return nil
}

// ValidateAPIKey still requires the header to be present.
func (m *MockWebhookValidator) ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("missing webhook api key")
	}
	return nil
}
