// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// AgentService manages the agents owned by a user.
type AgentService struct {
	AgentRepository domain.AgentRepository

	now func() time.Time
}

// NewAgentService creates a new AgentService.
func NewAgentService(agentRepository domain.AgentRepository) *AgentService {
	return &AgentService{
		AgentRepository: agentRepository,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AgentService) ServiceReady() bool {
	return s.AgentRepository != nil
}

func validateAgentFields(name, instructions string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name is required")
	}
	if strings.TrimSpace(instructions) == "" {
		return domain.NewValidationError("instructions are required")
	}
	return nil
}

// CreateAgent creates an agent owned by userID.
func (s *AgentService) CreateAgent(ctx context.Context, userID string, req models.CreateAgentRequest) (*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if err := validateAgentFields(req.Name, req.Instructions); err != nil {
		return nil, err
	}

	now := s.now()
	agent := &models.Agent{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		UserID:       userID,
		Instructions: req.Instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.AgentRepository.CreateAgent(ctx, agent); err != nil {
		slog.ErrorContext(ctx, "failed to create agent", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "created agent", "agent_id", agent.ID)
	return agent, nil
}

// GetAgent returns the agent when it belongs to userID. Agents of other users
// are reported as not found.
func (s *AgentService) GetAgent(ctx context.Context, userID, agentID string) (*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	agent, err := s.AgentRepository.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.UserID != userID {
		return nil, domain.NewNotFoundError("agent not found")
	}
	return agent, nil
}

// ListAgents returns every agent owned by userID.
func (s *AgentService) ListAgents(ctx context.Context, userID string) ([]*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	agents, err := s.AgentRepository.ListAgentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if agents == nil {
		agents = []*models.Agent{}
	}
	return agents, nil
}

// UpdateAgent replaces the name and instructions of an agent owned by userID.
func (s *AgentService) UpdateAgent(ctx context.Context, userID, agentID string, req models.UpdateAgentRequest) (*models.Agent, error) {
	if err := validateAgentFields(req.Name, req.Instructions); err != nil {
		return nil, err
	}

	agent, err := s.GetAgent(ctx, userID, agentID)
	if err != nil {
		return nil, err
	}

	agent.Name = strings.TrimSpace(req.Name)
	agent.Instructions = req.Instructions
	agent.UpdatedAt = s.now()

	if err := s.AgentRepository.UpdateAgent(ctx, agent); err != nil {
		slog.ErrorContext(ctx, "failed to update agent", "agent_id", agentID, logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "updated agent", "agent_id", agentID)
	return agent, nil
}

// DeleteAgent removes an agent owned by userID.
func (s *AgentService) DeleteAgent(ctx context.Context, userID, agentID string) error {
	if _, err := s.GetAgent(ctx, userID, agentID); err != nil {
		return err
	}

	if err := s.AgentRepository.DeleteAgent(ctx, agentID); err != nil {
		slog.ErrorContext(ctx, "failed to delete agent", "agent_id", agentID, logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "deleted agent", "agent_id", agentID)
	return nil
}
