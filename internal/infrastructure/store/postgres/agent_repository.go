// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// AgentRepository implements domain.AgentRepository using GORM
type AgentRepository struct {
	db *gorm.DB
}

var _ domain.AgentRepository = (*AgentRepository)(nil)

// NewAgentRepository creates a new GORM agent repository
func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) IsReady(ctx context.Context) bool {
	return r.db != nil && Ping(ctx, r.db) == nil
}

func (r *AgentRepository) CreateAgent(ctx context.Context, agent *models.Agent) error {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		slog.ErrorContext(ctx, "error creating agent", logging.ErrKey, err, "agent_id", agent.ID)
		return domain.NewInternalError("failed to create agent", err)
	}
	return nil
}

func (r *AgentRepository) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("agent not found", err)
		}
		slog.ErrorContext(ctx, "error getting agent", logging.ErrKey, err, "agent_id", agentID)
		return nil, domain.NewInternalError("failed to retrieve agent", err)
	}
	return &agent, nil
}

func (r *AgentRepository) ListAgentsByUser(ctx context.Context, userID string) ([]*models.Agent, error) {
	agents := []*models.Agent{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&agents).Error; err != nil {
		slog.ErrorContext(ctx, "error listing agents", logging.ErrKey, err, "user_id", userID)
		return nil, domain.NewInternalError("failed to list agents", err)
	}
	return agents, nil
}

func (r *AgentRepository) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	result := r.db.WithContext(ctx).Model(&models.Agent{}).Where("id = ?", agent.ID).Updates(map[string]any{
		"name":         agent.Name,
		"instructions": agent.Instructions,
		"updated_at":   agent.UpdatedAt,
	})
	if result.Error != nil {
		slog.ErrorContext(ctx, "error updating agent", logging.ErrKey, result.Error, "agent_id", agent.ID)
		return domain.NewInternalError("failed to update agent", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("agent not found")
	}
	return nil
}

func (r *AgentRepository) DeleteAgent(ctx context.Context, agentID string) error {
	result := r.db.WithContext(ctx).Delete(&models.Agent{}, "id = ?", agentID)
	if result.Error != nil {
		slog.ErrorContext(ctx, "error deleting agent", logging.ErrKey, result.Error, "agent_id", agentID)
		return domain.NewInternalError("failed to delete agent", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("agent not found")
	}
	return nil
}
