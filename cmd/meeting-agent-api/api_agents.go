// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// CreateAgent creates an agent owned by the caller.
func (s *MeetingAgentAPI) CreateAgent(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	var req models.CreateAgentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	agent, err := s.agentService.CreateAgent(ctx, userID, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, agent)
}

// ListAgents lists the caller's agents.
func (s *MeetingAgentAPI) ListAgents(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	agents, err := s.agentService.ListAgents(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agents)
}

// GetAgent fetches one of the caller's agents.
func (s *MeetingAgentAPI) GetAgent(w http.ResponseWriter, r *http.Request, userID, agentID string) {
	ctx := r.Context()

	agent, err := s.agentService.GetAgent(ctx, userID, agentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agent)
}

// UpdateAgent replaces the name and instructions of one of the caller's agents.
func (s *MeetingAgentAPI) UpdateAgent(w http.ResponseWriter, r *http.Request, userID, agentID string) {
	ctx := r.Context()

	var req models.UpdateAgentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	agent, err := s.agentService.UpdateAgent(ctx, userID, agentID, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agent)
}

// DeleteAgent deletes one of the caller's agents.
func (s *MeetingAgentAPI) DeleteAgent(w http.ResponseWriter, r *http.Request, userID, agentID string) {
	ctx := r.Context()

	if err := s.agentService.DeleteAgent(ctx, userID, agentID); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
