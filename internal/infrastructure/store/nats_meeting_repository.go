// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	base *NatsBaseRepository[models.Meeting]
	now  func() time.Time
}

var _ domain.MeetingRepository = (*NatsMeetingRepository)(nil)

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(meetings INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		base: NewNatsBaseRepository[models.Meeting](meetings, "meeting"),
		now:  time.Now,
	}
}

// IsReady checks if the repository is ready for use.
func (r *NatsMeetingRepository) IsReady(ctx context.Context) bool {
	return r.base.IsReady()
}

// CreateMeeting stores a new meeting keyed by its id.
func (r *NatsMeetingRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		return domain.NewValidationError("meeting id is required")
	}
	return r.base.Create(ctx, meeting.ID, meeting)
}

// GetMeeting returns the meeting with the given id.
func (r *NatsMeetingRepository) GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error) {
	if meetingID == "" {
		return nil, domain.NewNotFoundError("meeting not found")
	}
	return r.base.Get(ctx, meetingID)
}

// ListMeetingsByUser returns the meetings owned by userID, newest first.
func (r *NatsMeetingRepository) ListMeetingsByUser(ctx context.Context, userID string) ([]*models.Meeting, error) {
	meetings, err := r.base.ListEntities(ctx, func(m *models.Meeting) bool {
		return m.UserID == userID
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].CreatedAt.After(meetings[j].CreatedAt)
	})
	return meetings, nil
}

// UpdateMeetingDetails replaces name and agent while the meeting is in the expected status.
func (r *NatsMeetingRepository) UpdateMeetingDetails(ctx context.Context, meetingID string, expected models.MeetingStatus, name, agentID string) (*models.Meeting, error) {
	meeting, err := r.updateIf(ctx, meetingID, &expected, func(m *models.Meeting) {
		m.Name = name
		m.AgentID = agentID
		m.UpdatedAt = r.now().UTC()
	})
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

// UpdateMeetingIf applies patch when the current status matches expected.
func (r *NatsMeetingRepository) UpdateMeetingIf(ctx context.Context, meetingID string, expected *models.MeetingStatus, patch models.MeetingPatch) (*models.Meeting, error) {
	return r.updateIf(ctx, meetingID, expected, func(m *models.Meeting) {
		patch.Apply(m, r.now().UTC())
	})
}

func (r *NatsMeetingRepository) updateIf(ctx context.Context, meetingID string, expected *models.MeetingStatus, apply func(*models.Meeting)) (*models.Meeting, error) {
	if meetingID == "" {
		return nil, domain.NewNotFoundError("meeting not found")
	}

	meeting, err := r.base.UpdateIf(ctx, meetingID, func(m *models.Meeting) error {
		if expected != nil && m.Status != *expected {
			return errPreconditionFailed
		}
		apply(m)
		return nil
	})
	if errors.Is(err, errPreconditionFailed) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("meeting is not %s", *expected), err)
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}
