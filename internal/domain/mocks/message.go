// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockMessage is a NATS message fixture. Subject and Data return the values
// it was built with; HasReply and Respond are expectations.
type MockMessage struct {
	mock.Mock
	subject string
	data    []byte
}

// NewMockMessage creates a message published on subject with the given payload.
func NewMockMessage(data []byte, subject string) *MockMessage {
	return &MockMessage{subject: subject, data: data}
}

func (m *MockMessage) Subject() string { return m.subject }

func (m *MockMessage) Data() []byte { return m.data }

func (m *MockMessage) HasReply() bool {
	return m.Called().Bool(0)
}

func (m *MockMessage) Respond(data []byte) error {
	return m.Called(data).Error(0)
}
