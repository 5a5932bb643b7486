// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// MockJobSubmitter implements JobSubmitter for testing
type MockJobSubmitter struct {
	mock.Mock
}

func (m *MockJobSubmitter) Submit(ctx context.Context, job models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobSubmitter) IsReady() bool {
	args := m.Called()
	return args.Bool(0)
}
