// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers contains the NATS message handlers of the service.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/service"
)

// replyOK is sent to requesters once a message has been applied.
var replyOK = []byte("OK")

// MeetingProcessingHandler handles results published by downstream meeting processors.
type MeetingProcessingHandler struct {
	lifecycleService *service.MeetingLifecycleService
}

var _ domain.MessageHandler = (*MeetingProcessingHandler)(nil)

// NewMeetingProcessingHandler creates a new MeetingProcessingHandler.
func NewMeetingProcessingHandler(lifecycleService *service.MeetingLifecycleService) *MeetingProcessingHandler {
	return &MeetingProcessingHandler{
		lifecycleService: lifecycleService,
	}
}

// HandlerReady reports whether the handler's services are ready.
func (h *MeetingProcessingHandler) HandlerReady() bool {
	return h.lifecycleService != nil && h.lifecycleService.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (h *MeetingProcessingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.MeetingSummarizedSubject: h.HandleMeetingSummarized,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		respond(ctx, msg, nil)
		return
	}

	respond(ctx, msg, response)
}

// HandleMeetingSummarized stores a finished summary on its meeting.
func (h *MeetingProcessingHandler) HandleMeetingSummarized(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.HandlerReady() {
		slog.ErrorContext(ctx, "lifecycle service not ready", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	var summarized models.MeetingSummarizedMessage
	if err := json.Unmarshal(msg.Data(), &summarized); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal meeting summarized message", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid meeting summarized message", err)
	}

	if err := h.lifecycleService.CompleteMeeting(ctx, summarized); err != nil {
		return nil, err
	}

	return replyOK, nil
}

// respond replies to request/reply messages and is a no-op otherwise.
func respond(ctx context.Context, msg domain.Message, data []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
		return
	}
	slog.DebugContext(ctx, "responded to NATS message")
}
