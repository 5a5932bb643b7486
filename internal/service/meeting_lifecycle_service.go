// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/utils"
)

// AgentConfig holds the realtime model settings used when an agent joins a call.
type AgentConfig struct {
	// ModelAPIKey is the credential of the realtime model backend.
	ModelAPIKey string
	// Model is the realtime model name. Empty selects the provider default.
	Model string
}

// MeetingLifecycleService applies call provider events to meetings. Every
// store mutation is a conditional update on the expected prior status, so
// duplicate or out-of-order deliveries cannot move a meeting backwards.
type MeetingLifecycleService struct {
	MeetingRepository domain.MeetingRepository
	AgentRepository   domain.AgentRepository
	CallController    domain.CallController
	JobEnqueuer       *JobEnqueuer
	AgentConfig       AgentConfig

	now func() time.Time
}

// NewMeetingLifecycleService creates a new MeetingLifecycleService.
func NewMeetingLifecycleService(
	meetingRepository domain.MeetingRepository,
	agentRepository domain.AgentRepository,
	callController domain.CallController,
	jobEnqueuer *JobEnqueuer,
	agentConfig AgentConfig,
) *MeetingLifecycleService {
	return &MeetingLifecycleService{
		MeetingRepository: meetingRepository,
		AgentRepository:   agentRepository,
		CallController:    callController,
		JobEnqueuer:       jobEnqueuer,
		AgentConfig:       agentConfig,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingLifecycleService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AgentRepository != nil &&
		s.CallController != nil &&
		s.JobEnqueuer != nil
}

// HandleCallSessionStarted moves an upcoming meeting to active and brings its
// agent into the call.
func (s *MeetingLifecycleService) HandleCallSessionStarted(ctx context.Context, event models.CallSessionStartedEvent) error {
	meetingID := event.MeetingID()
	if meetingID == "" {
		return domain.NewValidationError("missing meetingId")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := s.MeetingRepository.UpdateMeetingIf(ctx, meetingID, models.StatusPtr(models.MeetingStatusUpcoming), models.MeetingPatch{
		Status:    models.StatusPtr(models.MeetingStatusActive),
		StartedAt: utils.TimePtr(s.now()),
	})
	if err != nil {
		if domain.IsNotFound(err) {
			slog.WarnContext(ctx, "no upcoming meeting to start", logging.ErrKey, err)
			return domain.NewNotFoundError("meeting not found", err)
		}
		slog.ErrorContext(ctx, "failed to start meeting", logging.ErrKey, err)
		return err
	}
	slog.InfoContext(ctx, "meeting is now active")

	agent, err := s.AgentRepository.GetAgent(ctx, meeting.AgentID)
	if err != nil {
		if domain.IsNotFound(err) {
			slog.WarnContext(ctx, "meeting agent does not exist", "agent_id", meeting.AgentID)
			return domain.NewNotFoundError("agent not found", err)
		}
		slog.ErrorContext(ctx, "failed to load meeting agent", "agent_id", meeting.AgentID, logging.ErrKey, err)
		return err
	}

	session, err := s.CallController.ConnectAgent(ctx, models.NewMeetingCallRef(meetingID), domain.AgentCredentials{
		AgentUserID: agent.ID,
		ModelAPIKey: s.AgentConfig.ModelAPIKey,
		Model:       s.AgentConfig.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect agent to call", "agent_id", agent.ID, logging.ErrKey, err, logging.PriorityCritical())
		return domain.NewUnavailableError("failed to connect agent", err)
	}

	if err := session.UpdateSession(ctx, agent.Instructions); err != nil {
		slog.ErrorContext(ctx, "failed to send agent instructions", "agent_id", agent.ID, logging.ErrKey, err, logging.PriorityCritical())
		if closeErr := session.Close(); closeErr != nil {
			slog.WarnContext(ctx, "failed to close agent session", "agent_id", agent.ID, logging.ErrKey, closeErr)
		}
		return domain.NewUnavailableError("failed to configure agent session", err)
	}

	slog.InfoContext(ctx, "agent joined call", "agent_id", agent.ID)
	return nil
}

// HandleCallSessionParticipantLeft ends the call. The meeting record is left
// alone; the session_ended event that follows moves it on.
func (s *MeetingLifecycleService) HandleCallSessionParticipantLeft(ctx context.Context, event models.CallSessionParticipantLeftEvent) error {
	meetingID := event.MeetingID()
	if meetingID == "" {
		return domain.NewValidationError("missing meetingId")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	if err := s.CallController.EndCall(ctx, models.NewMeetingCallRef(meetingID)); err != nil {
		slog.ErrorContext(ctx, "failed to end call", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "call ended after participant left", "user_id", event.Participant.User.ID)
	return nil
}

// HandleCallSessionEnded moves an active meeting to processing. A meeting in
// any other status is left unchanged.
func (s *MeetingLifecycleService) HandleCallSessionEnded(ctx context.Context, event models.CallSessionEndedEvent) error {
	meetingID := event.MeetingID()
	if meetingID == "" {
		return domain.NewValidationError("missing meetingId")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	_, err := s.MeetingRepository.UpdateMeetingIf(ctx, meetingID, models.StatusPtr(models.MeetingStatusActive), models.MeetingPatch{
		Status:  models.StatusPtr(models.MeetingStatusProcessing),
		EndedAt: utils.TimePtr(s.now()),
	})
	if err != nil {
		if domain.IsNotFound(err) {
			slog.InfoContext(ctx, "no active meeting to end, ignoring event")
			return nil
		}
		slog.ErrorContext(ctx, "failed to end meeting", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "meeting is now processing")
	return nil
}

// HandleCallTranscriptionReady stores the transcript location and submits the
// post-processing job.
func (s *MeetingLifecycleService) HandleCallTranscriptionReady(ctx context.Context, event models.CallTranscriptionReadyEvent) error {
	meetingID := event.MeetingID()
	if meetingID == "" {
		return domain.NewValidationError("missing meetingId")
	}
	if event.CallTranscription.URL == "" {
		return domain.NewValidationError("missing transcription url")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := s.MeetingRepository.UpdateMeetingIf(ctx, meetingID, nil, models.MeetingPatch{
		TranscriptURL: utils.StringPtr(event.CallTranscription.URL),
	})
	if err != nil {
		if domain.IsNotFound(err) {
			slog.WarnContext(ctx, "transcription ready for unknown meeting")
			return domain.NewNotFoundError("meeting not found", err)
		}
		slog.ErrorContext(ctx, "failed to store transcript url", logging.ErrKey, err)
		return err
	}

	result := s.JobEnqueuer.Enqueue(ctx, models.JobNameMeetingProcessing, models.MeetingProcessingJobData{
		MeetingID:     meeting.ID,
		TranscriptURL: utils.StringValue(meeting.TranscriptURL),
	})
	if !result.Submitted() {
		slog.WarnContext(ctx, "transcript stored but processing job was not submitted", "job_id", result.JobID)
		return nil
	}

	slog.InfoContext(ctx, "transcript stored and processing job submitted", "job_id", result.JobID)
	return nil
}

// HandleCallRecordingReady stores the recording location. An unknown meeting
// is logged and ignored.
func (s *MeetingLifecycleService) HandleCallRecordingReady(ctx context.Context, event models.CallRecordingReadyEvent) error {
	meetingID := event.MeetingID()
	if meetingID == "" {
		return domain.NewValidationError("missing meetingId")
	}
	if event.CallRecording.URL == "" {
		return domain.NewValidationError("missing recording url")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	_, err := s.MeetingRepository.UpdateMeetingIf(ctx, meetingID, nil, models.MeetingPatch{
		RecordingURL: utils.StringPtr(event.CallRecording.URL),
	})
	if err != nil {
		if domain.IsNotFound(err) {
			slog.WarnContext(ctx, "recording ready for unknown meeting, ignoring event")
			return nil
		}
		slog.ErrorContext(ctx, "failed to store recording url", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "recording stored")
	return nil
}

// CompleteMeeting stores the summary of a processing meeting and marks it
// completed. A meeting in any other status is left unchanged.
func (s *MeetingLifecycleService) CompleteMeeting(ctx context.Context, msg models.MeetingSummarizedMessage) error {
	if msg.MeetingID == "" {
		return domain.NewValidationError("missing meeting_id")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", msg.MeetingID))

	_, err := s.MeetingRepository.UpdateMeetingIf(ctx, msg.MeetingID, models.StatusPtr(models.MeetingStatusProcessing), models.MeetingPatch{
		Status:  models.StatusPtr(models.MeetingStatusCompleted),
		Summary: utils.StringPtr(msg.Summary),
	})
	if err != nil {
		if domain.IsNotFound(err) {
			slog.InfoContext(ctx, "no processing meeting to complete, ignoring summary")
			return nil
		}
		slog.ErrorContext(ctx, "failed to complete meeting", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "meeting completed")
	return nil
}
