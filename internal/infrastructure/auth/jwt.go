// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package auth validates Heimdall-issued bearer tokens.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

const (
	// defaultIssuer is the issuer Heimdall stamps into every token.
	defaultIssuer = "heimdall"
	// defaultAudience is the audience of tokens minted for this service.
	defaultAudience = "lfx-v2-meeting-agent-service"
	// defaultJWKSURL is the in-cluster Heimdall JWKS endpoint.
	defaultJWKSURL = "http://heimdall:4457/.well-known/jwks"

	jwksCacheTTL = 5 * time.Minute
	allowedSkew  = 5 * time.Second
	bearerPrefix = "bearer "
)

// HeimdallClaims contains the custom claims Heimdall adds to a token.
type HeimdallClaims struct {
	Principal string `json:"principal"`
	Email     string `json:"email,omitempty"`
}

// Validate ensures the claims carry a principal.
func (c *HeimdallClaims) Validate(_ context.Context) error {
	if c.Principal == "" {
		return errors.New("principal must be provided")
	}
	return nil
}

// IJWTAuth resolves the caller principal from a bearer token.
type IJWTAuth interface {
	ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error)
}

// JWTAuthConfig holds the JWT validation settings.
type JWTAuthConfig struct {
	// JWKSURL is the Heimdall JWKS endpoint. Empty selects the in-cluster default.
	JWKSURL string
	// Audience is the expected token audience. Empty selects the service default.
	Audience string
	// MockLocalPrincipal skips validation and returns this principal. Local development only.
	MockLocalPrincipal string
}

// JWTAuth validates Heimdall tokens against a cached JWKS.
type JWTAuth struct {
	validator *validator.Validator
	config    JWTAuthConfig
}

// NewJWTAuth builds a validator for PS256 Heimdall tokens.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultJWKSURL
	}
	if config.Audience == "" {
		config.Audience = defaultAudience
	}

	jwksURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(jwksURL, jwksCacheTTL, jwks.WithCustomJWKSURI(jwksURL))

	customClaims := func() validator.CustomClaims {
		return &HeimdallClaims{}
	}

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.PS256,
		defaultIssuer,
		[]string{config.Audience},
		validator.WithCustomClaims(customClaims),
		validator.WithAllowedClockSkew(allowedSkew),
	)
	if err != nil {
		return nil, err
	}

	return &JWTAuth{
		validator: jwtValidator,
		config:    config,
	}, nil
}

// ParsePrincipal validates the token and returns its principal. A leading
// "Bearer " scheme is accepted.
func (j *JWTAuth) ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error) {
	if j.config.MockLocalPrincipal != "" {
		logger.InfoContext(ctx, "JWT validation is disabled, returning mock principal",
			"principal", j.config.MockLocalPrincipal,
		)
		return j.config.MockLocalPrincipal, nil
	}

	if j.validator == nil {
		return "", domain.NewUnavailableError("JWT validator is not set up")
	}

	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = token[len(bearerPrefix):]
	}

	parsed, err := j.validator.ValidateToken(ctx, token)
	if err != nil {
		logger.WarnContext(ctx, "JWT validation failed", logging.ErrKey, err)
		return "", domain.NewUnauthorizedError("invalid bearer token", err)
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return "", domain.NewUnauthorizedError("failed to get validated authorization token claims")
	}

	customClaims, ok := claims.CustomClaims.(*HeimdallClaims)
	if !ok {
		return "", domain.NewUnauthorizedError("failed to get custom authorization token claims")
	}

	return customClaims.Principal, nil
}
