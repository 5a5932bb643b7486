// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
)

const testKeyID = "heimdall-test"

// heimdallFixture serves a JWKS for one RSA key and signs tokens with it.
type heimdallFixture struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

func newHeimdallFixture(t *testing.T) *heimdallFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"use": "sig",
			"alg": "PS256",
			"kid": testKeyID,
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	return &heimdallFixture{key: key, server: server}
}

func (f *heimdallFixture) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func validClaims(principal string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":       defaultIssuer,
		"aud":       []string{defaultAudience},
		"sub":       principal,
		"principal": principal,
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
	}
}

func TestHeimdallClaims_Validate(t *testing.T) {
	assert.NoError(t, (&HeimdallClaims{Principal: "user-1"}).Validate(context.Background()))

	err := (&HeimdallClaims{}).Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "principal must be provided")
}

func TestNewJWTAuth(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		a, err := NewJWTAuth(JWTAuthConfig{})
		require.NoError(t, err)
		assert.Equal(t, defaultJWKSURL, a.config.JWKSURL)
		assert.Equal(t, defaultAudience, a.config.Audience)
		assert.NotNil(t, a.validator)
	})

	t.Run("invalid JWKS URL", func(t *testing.T) {
		a, err := NewJWTAuth(JWTAuthConfig{JWKSURL: "://no-scheme"})
		assert.Error(t, err)
		assert.Nil(t, a)
	})
}

func TestJWTAuth_ParsePrincipal(t *testing.T) {
	fixture := newHeimdallFixture(t)
	a, err := NewJWTAuth(JWTAuthConfig{JWKSURL: fixture.server.URL})
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("valid token with bearer scheme", func(t *testing.T) {
		principal, err := a.ParsePrincipal(ctx, "Bearer "+fixture.sign(t, validClaims("user-1")), slog.Default())
		require.NoError(t, err)
		assert.Equal(t, "user-1", principal)
	})

	t.Run("valid token without scheme", func(t *testing.T) {
		principal, err := a.ParsePrincipal(ctx, fixture.sign(t, validClaims("user-2")), slog.Default())
		require.NoError(t, err)
		assert.Equal(t, "user-2", principal)
	})

	rejected := map[string]func() string{
		"empty token":     func() string { return "" },
		"malformed token": func() string { return "not.a.jwt" },
		"expired token": func() string {
			claims := validClaims("user-1")
			claims["exp"] = time.Now().Add(-time.Hour).Unix()
			return fixture.sign(t, claims)
		},
		"wrong audience": func() string {
			claims := validClaims("user-1")
			claims["aud"] = []string{"another-service"}
			return fixture.sign(t, claims)
		},
		"wrong issuer": func() string {
			claims := validClaims("user-1")
			claims["iss"] = "someone-else"
			return fixture.sign(t, claims)
		},
		"missing principal": func() string {
			claims := validClaims("user-1")
			delete(claims, "principal")
			return fixture.sign(t, claims)
		},
		"HS256 token": func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user-1"))
			signed, err := token.SignedString([]byte("shared"))
			require.NoError(t, err)
			return signed
		},
	}

	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			principal, err := a.ParsePrincipal(ctx, token(), slog.Default())
			require.Error(t, err)
			assert.Empty(t, principal)
			assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(err))
		})
	}
}

func TestJWTAuth_ParsePrincipal_Mock(t *testing.T) {
	a := &JWTAuth{config: JWTAuthConfig{MockLocalPrincipal: "local-dev"}}

	for _, token := range []string{"", "anything", "Bearer anything"} {
		principal, err := a.ParsePrincipal(context.Background(), token, slog.Default())
		require.NoError(t, err)
		assert.Equal(t, "local-dev", principal)
	}
}

func TestJWTAuth_ParsePrincipal_NoValidator(t *testing.T) {
	a := &JWTAuth{}

	principal, err := a.ParsePrincipal(context.Background(), "token", slog.Default())
	require.Error(t, err)
	assert.Empty(t, principal)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
