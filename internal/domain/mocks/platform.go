// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// MockCallController implements CallController for testing
type MockCallController struct {
	mock.Mock
}

func (m *MockCallController) ConnectAgent(ctx context.Context, call models.CallRef, creds domain.AgentCredentials) (domain.AgentSession, error) {
	args := m.Called(ctx, call, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.AgentSession), args.Error(1)
}

func (m *MockCallController) EndCall(ctx context.Context, call models.CallRef) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockCallController) IsReady() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockAgentSession implements AgentSession for testing
type MockAgentSession struct {
	mock.Mock
}

func (m *MockAgentSession) UpdateSession(ctx context.Context, instructions string) error {
	args := m.Called(ctx, instructions)
	return args.Error(0)
}

func (m *MockAgentSession) Close() error {
	args := m.Called()
	return args.Error(0)
}
