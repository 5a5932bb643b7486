// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Agent is the configuration of an AI participant that can be bound to a call.
type Agent struct {
	ID           string    `json:"id" gorm:"column:id;primaryKey"`
	Name         string    `json:"name" gorm:"column:name;not null"`
	UserID       string    `json:"user_id" gorm:"column:user_id;not null;index"`
	Instructions string    `json:"instructions" gorm:"column:instructions;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;not null"`
}

// TableName overrides the gorm table name.
func (Agent) TableName() string {
	return "agent"
}

// CreateAgentRequest carries the caller-supplied fields of a new agent.
type CreateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// UpdateAgentRequest carries the mutable fields of an agent.
type UpdateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}
