// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// CreateMeeting schedules a meeting for the caller.
func (s *MeetingAgentAPI) CreateMeeting(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	var req models.CreateMeetingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := s.meetingService.CreateMeeting(ctx, userID, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, meeting)
}

// ListMeetings lists the caller's meetings with their agents.
func (s *MeetingAgentAPI) ListMeetings(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	meetings, err := s.meetingService.ListMeetings(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meetings)
}

// GetMeeting fetches one of the caller's meetings.
func (s *MeetingAgentAPI) GetMeeting(w http.ResponseWriter, r *http.Request, userID, meetingID string) {
	ctx := r.Context()

	meeting, err := s.meetingService.GetMeeting(ctx, userID, meetingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

// UpdateMeeting renames or reassigns the agent of an upcoming meeting.
func (s *MeetingAgentAPI) UpdateMeeting(w http.ResponseWriter, r *http.Request, userID, meetingID string) {
	ctx := r.Context()

	var req models.UpdateMeetingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := s.meetingService.UpdateMeeting(ctx, userID, meetingID, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}
