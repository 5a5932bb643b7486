// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// StreamWebhookService authenticates Stream webhook deliveries and routes
// each event to its lifecycle handler.
type StreamWebhookService struct {
	webhookValidator domain.WebhookValidator
	lifecycle        *MeetingLifecycleService
}

// WebhookRequest represents the webhook processing request
type WebhookRequest struct {
	Signature string
	APIKey    string
	RawBody   []byte
}

// WebhookResponse represents the webhook processing response
type WebhookResponse struct {
	Status    string
	EventType string
	Handled   bool
}

// NewStreamWebhookService creates a new StreamWebhookService
func NewStreamWebhookService(
	webhookValidator domain.WebhookValidator,
	lifecycle *MeetingLifecycleService,
) *StreamWebhookService {
	return &StreamWebhookService{
		webhookValidator: webhookValidator,
		lifecycle:        lifecycle,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *StreamWebhookService) ServiceReady() bool {
	return s.webhookValidator != nil && s.lifecycle != nil && s.lifecycle.ServiceReady()
}

// ProcessWebhookEvent verifies and dispatches one webhook delivery. Nothing is
// decoded or read from the store until the signature has been verified.
func (s *StreamWebhookService) ProcessWebhookEvent(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if err := s.validateSignature(ctx, req); err != nil {
		return nil, err
	}

	event, err := models.DecodeStreamWebhookEvent(req.RawBody)
	if err != nil {
		slog.WarnContext(ctx, "failed to decode webhook body", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid JSON", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", event.EventType()))

	handled, err := s.dispatch(ctx, event)
	if err != nil {
		return nil, err
	}

	return &WebhookResponse{
		Status:    "ok",
		EventType: event.EventType(),
		Handled:   handled,
	}, nil
}

// validateRequest validates the webhook request structure
func (s *StreamWebhookService) validateRequest(req WebhookRequest) error {
	if req.Signature == "" || req.APIKey == "" {
		return domain.NewValidationError("missing signature or API key")
	}
	return nil
}

// validateSignature validates the webhook API key and signature
func (s *StreamWebhookService) validateSignature(ctx context.Context, req WebhookRequest) error {
	if err := s.webhookValidator.ValidateAPIKey(req.APIKey); err != nil {
		slog.WarnContext(ctx, "rejected webhook with invalid API key", logging.ErrKey, err)
		return domain.NewValidationError("invalid API key", err)
	}
	if err := s.webhookValidator.ValidateSignature(req.RawBody, req.Signature); err != nil {
		slog.WarnContext(ctx, "rejected webhook with invalid signature", logging.ErrKey, err)
		return domain.NewValidationError("invalid webhook signature", err)
	}
	return nil
}

// dispatch routes the event to exactly one handler. It reports false for
// event types the service does not act on.
func (s *StreamWebhookService) dispatch(ctx context.Context, event models.StreamWebhookEvent) (bool, error) {
	var err error
	switch e := event.(type) {
	case models.CallSessionStartedEvent:
		err = s.lifecycle.HandleCallSessionStarted(ctx, e)
	case models.CallSessionParticipantLeftEvent:
		err = s.lifecycle.HandleCallSessionParticipantLeft(ctx, e)
	case models.CallSessionEndedEvent:
		err = s.lifecycle.HandleCallSessionEnded(ctx, e)
	case models.CallTranscriptionReadyEvent:
		err = s.lifecycle.HandleCallTranscriptionReady(ctx, e)
	case models.CallRecordingReadyEvent:
		err = s.lifecycle.HandleCallRecordingReady(ctx, e)
	default:
		slog.DebugContext(ctx, "ignoring unhandled webhook event")
		return false, nil
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to handle webhook event", logging.ErrKey, err,
			"error_type", domain.GetErrorType(err).String(),
		)
		return true, err
	}

	slog.InfoContext(ctx, "successfully processed webhook event")
	return true, nil
}
