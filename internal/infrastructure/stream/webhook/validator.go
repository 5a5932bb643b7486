// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// StreamWebhookValidator handles validation of Stream webhook signatures
type StreamWebhookValidator struct {
	APIKey    string
	APISecret string
}

// NewStreamWebhookValidator creates a new Stream webhook validator
func NewStreamWebhookValidator(apiKey, apiSecret string) *StreamWebhookValidator {
	return &StreamWebhookValidator{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
}

// Sign returns the signature Stream sends for body: the hex encoded
// HMAC-SHA256 of the raw body keyed with the API secret.
func (v *StreamWebhookValidator) Sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(v.APISecret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateSignature validates the Stream webhook signature
func (v *StreamWebhookValidator) ValidateSignature(body []byte, signature string) error {
	if v.APISecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed webhook signature: %w", err)
	}

	expected, _ := hex.DecodeString(v.Sign(body))

	// Compare signatures using constant-time comparison
	if !hmac.Equal(provided, expected) {
		return fmt.Errorf("stream webhook signature does not match expected signature")
	}

	return nil
}

// ValidateAPIKey checks the API key header. An unconfigured key only
// requires the header to be present.
func (v *StreamWebhookValidator) ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("missing webhook api key")
	}
	if v.APIKey != "" && !hmac.Equal([]byte(apiKey), []byte(v.APIKey)) {
		return fmt.Errorf("webhook api key does not match configured api key")
	}
	return nil
}
