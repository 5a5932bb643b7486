// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface is implemented by the NATS KV and PostgreSQL backends.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error)
	ListMeetingsByUser(ctx context.Context, userID string) ([]*models.Meeting, error)

	// UpdateMeetingDetails replaces name and agent of a meeting that is still
	// in the expected status.
	UpdateMeetingDetails(ctx context.Context, meetingID string, expected models.MeetingStatus, name, agentID string) (*models.Meeting, error)

	// UpdateMeetingIf applies patch to the meeting atomically, but only when its
	// current status equals expected. A nil expected status makes the update
	// unconditional. When no meeting matches (missing id or different status)
	// a not found error is returned and nothing is written.
	UpdateMeetingIf(ctx context.Context, meetingID string, expected *models.MeetingStatus, patch models.MeetingPatch) (*models.Meeting, error)

	IsReady(ctx context.Context) bool
}

// AgentRepository defines the interface for agent storage operations.
type AgentRepository interface {
	CreateAgent(ctx context.Context, agent *models.Agent) error
	GetAgent(ctx context.Context, agentID string) (*models.Agent, error)
	ListAgentsByUser(ctx context.Context, userID string) ([]*models.Agent, error)
	UpdateAgent(ctx context.Context, agent *models.Agent) error
	DeleteAgent(ctx context.Context, agentID string) error

	IsReady(ctx context.Context) bool
}
