// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/concurrent"
)

// agentLookupWorkers bounds the concurrent agent reads of a meeting list.
const agentLookupWorkers = 5

// MeetingService manages the meetings owned by a user. It never touches
// lifecycle fields; those belong to MeetingLifecycleService.
type MeetingService struct {
	MeetingRepository domain.MeetingRepository
	AgentRepository   domain.AgentRepository

	now func() time.Time
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepository domain.MeetingRepository,
	agentRepository domain.AgentRepository,
) *MeetingService {
	return &MeetingService{
		MeetingRepository: meetingRepository,
		AgentRepository:   agentRepository,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil && s.AgentRepository != nil
}

// ownedAgent loads an agent and checks it belongs to userID.
func (s *MeetingService) ownedAgent(ctx context.Context, userID, agentID string) (*models.Agent, error) {
	agent, err := s.AgentRepository.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.UserID != userID {
		slog.WarnContext(ctx, "agent belongs to another user", "agent_id", agentID)
		return nil, domain.NewNotFoundError("agent not found")
	}
	return agent, nil
}

func validateMeetingFields(name, agentID string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name is required")
	}
	if agentID == "" {
		return domain.NewValidationError("agent_id is required")
	}
	return nil
}

// CreateMeeting creates an upcoming meeting owned by userID.
func (s *MeetingService) CreateMeeting(ctx context.Context, userID string, req models.CreateMeetingRequest) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if err := validateMeetingFields(req.Name, req.AgentID); err != nil {
		return nil, err
	}

	if _, err := s.ownedAgent(ctx, userID, req.AgentID); err != nil {
		return nil, err
	}

	now := s.now()
	meeting := &models.Meeting{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		UserID:    userID,
		AgentID:   req.AgentID,
		Status:    models.MeetingStatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.MeetingRepository.CreateMeeting(ctx, meeting); err != nil {
		slog.ErrorContext(ctx, "failed to create meeting", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "created meeting", "meeting_id", meeting.ID)
	return meeting, nil
}

// GetMeeting returns the meeting when it belongs to userID.
func (s *MeetingService) GetMeeting(ctx context.Context, userID, meetingID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	meeting, err := s.MeetingRepository.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.UserID != userID {
		return nil, domain.NewNotFoundError("meeting not found")
	}
	return meeting, nil
}

// ListMeetings returns the meetings of userID, newest first, each with its
// agent. Meetings whose agent no longer exists are left out.
func (s *MeetingService) ListMeetings(ctx context.Context, userID string) ([]*models.MeetingWithAgent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	meetings, err := s.MeetingRepository.ListMeetingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	agents, err := s.loadAgents(ctx, meetings)
	if err != nil {
		return nil, err
	}

	result := make([]*models.MeetingWithAgent, 0, len(meetings))
	for _, meeting := range meetings {
		agent, ok := agents[meeting.AgentID]
		if !ok {
			slog.DebugContext(ctx, "skipping meeting without agent", "meeting_id", meeting.ID, "agent_id", meeting.AgentID)
			continue
		}
		result = append(result, models.NewMeetingWithAgent(meeting, agent))
	}
	return result, nil
}

// loadAgents fetches the distinct agents of the given meetings concurrently.
func (s *MeetingService) loadAgents(ctx context.Context, meetings []*models.Meeting) (map[string]*models.Agent, error) {
	var (
		mu     sync.Mutex
		agents = make(map[string]*models.Agent)
		seen   = make(map[string]struct{})
		tasks  []func() error
	)

	for _, meeting := range meetings {
		agentID := meeting.AgentID
		if _, ok := seen[agentID]; ok {
			continue
		}
		seen[agentID] = struct{}{}

		tasks = append(tasks, func() error {
			agent, err := s.AgentRepository.GetAgent(ctx, agentID)
			if err != nil {
				if domain.IsNotFound(err) {
					return nil
				}
				return err
			}
			mu.Lock()
			agents[agentID] = agent
			mu.Unlock()
			return nil
		})
	}

	if err := concurrent.NewWorkerPool(agentLookupWorkers).Run(ctx, tasks...); err != nil {
		slog.ErrorContext(ctx, "failed to load meeting agents", logging.ErrKey, err)
		return nil, err
	}
	return agents, nil
}

// UpdateMeeting changes the name and agent of an upcoming meeting owned by userID.
func (s *MeetingService) UpdateMeeting(ctx context.Context, userID, meetingID string, req models.UpdateMeetingRequest) (*models.Meeting, error) {
	if err := validateMeetingFields(req.Name, req.AgentID); err != nil {
		return nil, err
	}

	if _, err := s.GetMeeting(ctx, userID, meetingID); err != nil {
		return nil, err
	}

	if _, err := s.ownedAgent(ctx, userID, req.AgentID); err != nil {
		return nil, err
	}

	meeting, err := s.MeetingRepository.UpdateMeetingDetails(ctx, meetingID, models.MeetingStatusUpcoming, strings.TrimSpace(req.Name), req.AgentID)
	if err != nil {
		if domain.IsNotFound(err) {
			slog.WarnContext(ctx, "meeting can no longer be edited", "meeting_id", meetingID)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "updated meeting", "meeting_id", meetingID)
	return meeting, nil
}
