// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/auth"
)

const bearerScheme = "bearer"

// AuthService turns the Authorization header of an API request into the id of
// the user the request acts for. Agents and meetings are scoped to that id.
type AuthService struct {
	auth auth.IJWTAuth
}

// NewAuthService creates a new AuthService.
func NewAuthService(auth auth.IJWTAuth) *AuthService {
	return &AuthService{
		auth: auth,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AuthService) ServiceReady() bool {
	return s.auth != nil
}

// ParsePrincipal resolves the user id from an Authorization header value. Only
// the Bearer scheme is accepted; the bare token is handed to the validator.
func (s *AuthService) ParsePrincipal(ctx context.Context, authorization string, logger *slog.Logger) (string, error) {
	if !s.ServiceReady() {
		return "", domain.NewUnavailableError("auth service not ready")
	}

	token, err := bearerToken(authorization)
	if err != nil {
		return "", err
	}

	principal, err := s.auth.ParsePrincipal(ctx, token, logger)
	if err != nil {
		return "", err
	}
	if principal == "" {
		return "", domain.NewUnauthorizedError("token has no principal")
	}
	return principal, nil
}

// bearerToken extracts the token of a "Bearer <token>" header value.
func bearerToken(authorization string) (string, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return "", domain.NewUnauthorizedError("missing bearer token")
	}

	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", domain.NewUnauthorizedError("authorization scheme must be Bearer")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.NewUnauthorizedError("missing bearer token")
	}
	return token, nil
}
