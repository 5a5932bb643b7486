// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/auth"
)

func TestAuthService_ParsePrincipal(t *testing.T) {
	tests := []struct {
		name          string
		authorization string
		setupMocks    func(*auth.MockJWTAuth)
		wantUser      string
		wantErrType   *domain.ErrorType
	}{
		{
			name:          "bearer token",
			authorization: "Bearer good-token",
			setupMocks: func(m *auth.MockJWTAuth) {
				m.On("ParsePrincipal", mock.Anything, "good-token", mock.Anything).Return(testUserID, nil).Once()
			},
			wantUser: testUserID,
		},
		{
			name:          "scheme is case insensitive and padding is trimmed",
			authorization: "  bearer   good-token  ",
			setupMocks: func(m *auth.MockJWTAuth) {
				m.On("ParsePrincipal", mock.Anything, "good-token", mock.Anything).Return(testUserID, nil).Once()
			},
			wantUser: testUserID,
		},
		{
			name:          "missing header",
			authorization: "",
			wantErrType:   ptrErrorType(domain.ErrorTypeUnauthorized),
		},
		{
			name:          "scheme without token",
			authorization: "Bearer ",
			wantErrType:   ptrErrorType(domain.ErrorTypeUnauthorized),
		},
		{
			name:          "bare token without scheme",
			authorization: "good-token",
			wantErrType:   ptrErrorType(domain.ErrorTypeUnauthorized),
		},
		{
			name:          "basic scheme",
			authorization: "Basic dXNlcjpwYXNz",
			wantErrType:   ptrErrorType(domain.ErrorTypeUnauthorized),
		},
		{
			name:          "rejected token",
			authorization: "Bearer expired",
			setupMocks: func(m *auth.MockJWTAuth) {
				m.On("ParsePrincipal", mock.Anything, "expired", mock.Anything).
					Return("", domain.NewUnauthorizedError("invalid bearer token")).Once()
			},
			wantErrType: ptrErrorType(domain.ErrorTypeUnauthorized),
		},
		{
			name:          "validator returns no principal",
			authorization: "Bearer anonymous",
			setupMocks: func(m *auth.MockJWTAuth) {
				m.On("ParsePrincipal", mock.Anything, "anonymous", mock.Anything).Return("", nil).Once()
			},
			wantErrType: ptrErrorType(domain.ErrorTypeUnauthorized),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtAuth := &auth.MockJWTAuth{}
			if tt.setupMocks != nil {
				tt.setupMocks(jwtAuth)
			}

			principal, err := NewAuthService(jwtAuth).ParsePrincipal(context.Background(), tt.authorization, slog.Default())

			jwtAuth.AssertExpectations(t)
			if tt.wantErrType != nil {
				assert.Equal(t, *tt.wantErrType, domain.GetErrorType(err))
				assert.Empty(t, principal)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantUser, principal)
		})
	}
}

func TestAuthService_NotReady(t *testing.T) {
	principal, err := NewAuthService(nil).ParsePrincipal(context.Background(), "Bearer token", slog.Default())

	assert.Empty(t, principal)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
