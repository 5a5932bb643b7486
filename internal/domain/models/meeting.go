// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the lifecycle status of a meeting.
type MeetingStatus string

// Meeting statuses. A meeting starts as upcoming and only moves forward.
const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusUpcoming, MeetingStatusActive, MeetingStatusCompleted,
		MeetingStatusProcessing, MeetingStatusCancelled:
		return true
	}
	return false
}

// StatusPtr returns a pointer to the given status.
func StatusPtr(s MeetingStatus) *MeetingStatus {
	return &s
}

// Meeting is the persisted representation of a meeting.
type Meeting struct {
	ID            string        `json:"id" gorm:"column:id;primaryKey"`
	Name          string        `json:"name" gorm:"column:name;not null"`
	UserID        string        `json:"user_id" gorm:"column:user_id;not null;index"`
	AgentID       string        `json:"agent_id" gorm:"column:agent_id;not null"`
	Status        MeetingStatus `json:"status" gorm:"column:status;type:meeting_status;not null;default:upcoming"`
	TranscriptURL *string       `json:"transcript_url,omitempty" gorm:"column:transcript_url"`
	RecordingURL  *string       `json:"recording_url,omitempty" gorm:"column:recording_url"`
	Summary       *string       `json:"summary,omitempty" gorm:"column:summary"`
	StartedAt     *time.Time    `json:"started_at,omitempty" gorm:"column:started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty" gorm:"column:ended_at"`
	CreatedAt     time.Time     `json:"created_at" gorm:"column:created_at;not null"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"column:updated_at;not null"`
}

// TableName overrides the gorm table name.
func (Meeting) TableName() string {
	return "meeting"
}

// MeetingPatch lists the lifecycle fields a handler changes in one
// conditional update. Nil fields are left untouched.
type MeetingPatch struct {
	Status        *MeetingStatus
	StartedAt     *time.Time
	EndedAt       *time.Time
	TranscriptURL *string
	RecordingURL  *string
	Summary       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p MeetingPatch) IsEmpty() bool {
	return p.Status == nil && p.StartedAt == nil && p.EndedAt == nil &&
		p.TranscriptURL == nil && p.RecordingURL == nil && p.Summary == nil
}

// Apply copies the non-nil patch fields onto m and bumps UpdatedAt.
func (p MeetingPatch) Apply(m *Meeting, now time.Time) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.StartedAt != nil {
		m.StartedAt = p.StartedAt
	}
	if p.EndedAt != nil {
		m.EndedAt = p.EndedAt
	}
	if p.TranscriptURL != nil {
		m.TranscriptURL = p.TranscriptURL
	}
	if p.RecordingURL != nil {
		m.RecordingURL = p.RecordingURL
	}
	if p.Summary != nil {
		m.Summary = p.Summary
	}
	m.UpdatedAt = now
}

// Columns returns the patch as a column map for SQL backends.
func (p MeetingPatch) Columns(now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.StartedAt != nil {
		cols["started_at"] = *p.StartedAt
	}
	if p.EndedAt != nil {
		cols["ended_at"] = *p.EndedAt
	}
	if p.TranscriptURL != nil {
		cols["transcript_url"] = *p.TranscriptURL
	}
	if p.RecordingURL != nil {
		cols["recording_url"] = *p.RecordingURL
	}
	if p.Summary != nil {
		cols["summary"] = *p.Summary
	}
	return cols
}

// MeetingWithAgent is a meeting enriched with its agent for list views.
type MeetingWithAgent struct {
	*Meeting
	Agent *Agent `json:"agent,omitempty"`
	// Duration is the elapsed seconds between start and end, when both are known.
	Duration *float64 `json:"duration,omitempty"`
}

// NewMeetingWithAgent builds the list view of a meeting.
func NewMeetingWithAgent(m *Meeting, agent *Agent) *MeetingWithAgent {
	out := &MeetingWithAgent{Meeting: m, Agent: agent}
	if m.StartedAt != nil && m.EndedAt != nil {
		d := m.EndedAt.Sub(*m.StartedAt).Seconds()
		out.Duration = &d
	}
	return out
}

// CreateMeetingRequest carries the caller-supplied fields of a new meeting.
type CreateMeetingRequest struct {
	Name    string `json:"name"`
	AgentID string `json:"agent_id"`
}

// UpdateMeetingRequest carries the fields a caller may change on an upcoming meeting.
type UpdateMeetingRequest struct {
	Name    string `json:"name"`
	AgentID string `json:"agent_id"`
}
