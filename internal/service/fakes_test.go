// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// memMeetingRepository is an in-memory MeetingRepository with the same
// conditional update semantics as the real backends.
type memMeetingRepository struct {
	mu       sync.Mutex
	meetings map[string]*models.Meeting
	writes   int
}

func newMemMeetingRepository(meetings ...*models.Meeting) *memMeetingRepository {
	r := &memMeetingRepository{meetings: make(map[string]*models.Meeting)}
	for _, m := range meetings {
		cp := *m
		r.meetings[m.ID] = &cp
	}
	return r
}

func (r *memMeetingRepository) snapshot(id string) *models.Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

func (r *memMeetingRepository) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *memMeetingRepository) CreateMeeting(_ context.Context, meeting *models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[meeting.ID]; ok {
		return domain.NewConflictError("meeting already exists")
	}
	cp := *meeting
	r.meetings[meeting.ID] = &cp
	r.writes++
	return nil
}

func (r *memMeetingRepository) GetMeeting(_ context.Context, meetingID string) (*models.Meeting, error) {
	m := r.snapshot(meetingID)
	if m == nil {
		return nil, domain.NewNotFoundError("meeting not found")
	}
	return m, nil
}

func (r *memMeetingRepository) ListMeetingsByUser(_ context.Context, userID string) ([]*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Meeting
	for _, m := range r.meetings {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMeetingRepository) UpdateMeetingDetails(_ context.Context, meetingID string, expected models.MeetingStatus, name, agentID string) (*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[meetingID]
	if !ok || m.Status != expected {
		return nil, domain.NewNotFoundError("meeting not found")
	}
	m.Name = name
	m.AgentID = agentID
	r.writes++
	cp := *m
	return &cp, nil
}

func (r *memMeetingRepository) UpdateMeetingIf(_ context.Context, meetingID string, expected *models.MeetingStatus, patch models.MeetingPatch) (*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[meetingID]
	if !ok {
		return nil, domain.NewNotFoundError("meeting not found")
	}
	if expected != nil && m.Status != *expected {
		return nil, domain.NewNotFoundError("meeting is not " + string(*expected))
	}
	patch.Apply(m, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	r.writes++
	cp := *m
	return &cp, nil
}

func (r *memMeetingRepository) IsReady(context.Context) bool {
	return true
}
