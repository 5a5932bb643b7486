// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// callTokenTTL bounds how long an agent participant token stays valid.
const callTokenTTL = 4 * time.Hour

// ServerToken signs the server-side token used for Stream REST calls.
func ServerToken(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("stream api secret not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign stream server token: %w", err)
	}
	return signed, nil
}

// CallToken signs a user token scoped to the given calls.
func CallToken(secret, userID string, callCIDs []string, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("stream api secret not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("user id is required for a call token")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   userID,
		"call_cids": callCIDs,
		"iat":       now.Add(-5 * time.Second).Unix(),
		"exp":       now.Add(callTokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign stream call token: %w", err)
	}
	return signed, nil
}
