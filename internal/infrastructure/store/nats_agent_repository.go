// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// NatsAgentRepository is the NATS KV store repository for agents.
type NatsAgentRepository struct {
	base *NatsBaseRepository[models.Agent]
}

var _ domain.AgentRepository = (*NatsAgentRepository)(nil)

// NewNatsAgentRepository creates a new NATS KV store repository for agents.
func NewNatsAgentRepository(agents INatsKeyValue) *NatsAgentRepository {
	return &NatsAgentRepository{
		base: NewNatsBaseRepository[models.Agent](agents, "agent"),
	}
}

func (r *NatsAgentRepository) IsReady(ctx context.Context) bool {
	return r.base.IsReady()
}

func (r *NatsAgentRepository) CreateAgent(ctx context.Context, agent *models.Agent) error {
	if agent.ID == "" {
		return domain.NewValidationError("agent id is required")
	}
	return r.base.Create(ctx, agent.ID, agent)
}

func (r *NatsAgentRepository) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	if agentID == "" {
		return nil, domain.NewNotFoundError("agent not found")
	}
	return r.base.Get(ctx, agentID)
}

// ListAgentsByUser returns the agents owned by userID, newest first.
func (r *NatsAgentRepository) ListAgentsByUser(ctx context.Context, userID string) ([]*models.Agent, error) {
	agents, err := r.base.ListEntities(ctx, func(a *models.Agent) bool {
		return a.UserID == userID
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].CreatedAt.After(agents[j].CreatedAt)
	})
	return agents, nil
}

// UpdateAgent overwrites the mutable agent fields, retrying on concurrent writes.
func (r *NatsAgentRepository) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	updated, err := r.base.UpdateIf(ctx, agent.ID, func(current *models.Agent) error {
		current.Name = agent.Name
		current.Instructions = agent.Instructions
		current.UpdatedAt = agent.UpdatedAt
		return nil
	})
	if err != nil {
		return err
	}
	*agent = *updated
	return nil
}

func (r *NatsAgentRepository) DeleteAgent(ctx context.Context, agentID string) error {
	_, revision, err := r.base.GetWithRevision(ctx, agentID)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, agentID, revision)
}
