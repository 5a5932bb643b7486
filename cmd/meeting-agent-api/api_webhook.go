// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/constants"
)

// StreamWebhook receives a Stream Video webhook delivery. The raw body is
// captured by [middleware.WebhookBodyCaptureMiddleware] so the signature is
// checked against the exact bytes that were sent.
func (s *MeetingAgentAPI) StreamWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawBody, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		slog.ErrorContext(ctx, "raw webhook body missing from request context")
		writeError(ctx, w, domain.NewInternalError("webhook body not captured"))
		return
	}

	resp, err := s.streamWebhookService.ProcessWebhookEvent(ctx, service.WebhookRequest{
		Signature: r.Header.Get(constants.StreamSignatureHeader),
		APIKey:    r.Header.Get(constants.StreamAPIKeyHeader),
		RawBody:   rawBody,
	})
	if err != nil {
		slog.WarnContext(ctx, "webhook delivery rejected", logging.ErrKey, err, "error_type", domain.GetErrorType(err).String())
		writeError(ctx, w, err)
		return
	}

	slog.DebugContext(ctx, "webhook delivery acknowledged", "event_type", resp.EventType, "handled", resp.Handled)
	writeJSON(ctx, w, http.StatusOK, statusResponse{Status: resp.Status})
}
