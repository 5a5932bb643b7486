// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	goahttp "goa.design/goa/v3/http"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/constants"
)

// MeetingAgentAPI serves the HTTP surface of the meeting agent service.
type MeetingAgentAPI struct {
	authService          *service.AuthService
	agentService         *service.AgentService
	meetingService       *service.MeetingService
	streamWebhookService *service.StreamWebhookService
}

// NewMeetingAgentAPI creates a new MeetingAgentAPI.
func NewMeetingAgentAPI(
	authService *service.AuthService,
	agentService *service.AgentService,
	meetingService *service.MeetingService,
	streamWebhookService *service.StreamWebhookService,
) *MeetingAgentAPI {
	return &MeetingAgentAPI{
		authService:          authService,
		agentService:         agentService,
		meetingService:       meetingService,
		streamWebhookService: streamWebhookService,
	}
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusResponse is the body of an acknowledged webhook delivery.
type statusResponse struct {
	Status string `json:"status"`
}

// Mount registers every route on the muxer.
func (s *MeetingAgentAPI) Mount(mux goahttp.Muxer) {
	mux.Handle(http.MethodGet, constants.LivezPath, s.Livez)
	mux.Handle(http.MethodGet, constants.ReadyzPath, s.Readyz)

	mux.Handle(http.MethodPost, constants.StreamWebhookPath, s.StreamWebhook)

	mux.Handle(http.MethodPost, "/agents", s.authenticated(s.CreateAgent))
	mux.Handle(http.MethodGet, "/agents", s.authenticated(s.ListAgents))
	mux.Handle(http.MethodGet, "/agents/{id}", s.authenticated(withPathID(mux, s.GetAgent)))
	mux.Handle(http.MethodPut, "/agents/{id}", s.authenticated(withPathID(mux, s.UpdateAgent)))
	mux.Handle(http.MethodDelete, "/agents/{id}", s.authenticated(withPathID(mux, s.DeleteAgent)))

	mux.Handle(http.MethodPost, "/meetings", s.authenticated(s.CreateMeeting))
	mux.Handle(http.MethodGet, "/meetings", s.authenticated(s.ListMeetings))
	mux.Handle(http.MethodGet, "/meetings/{id}", s.authenticated(withPathID(mux, s.GetMeeting)))
	mux.Handle(http.MethodPut, "/meetings/{id}", s.authenticated(withPathID(mux, s.UpdateMeeting)))
}

// ServiceReady reports whether every service has its dependencies.
func (s *MeetingAgentAPI) ServiceReady() bool {
	return s.authService.ServiceReady() &&
		s.agentService.ServiceReady() &&
		s.meetingService.ServiceReady() &&
		s.streamWebhookService.ServiceReady()
}

// Readyz checks if the service is able to take inbound requests.
func (s *MeetingAgentAPI) Readyz(w http.ResponseWriter, r *http.Request) {
	if !s.ServiceReady() {
		writeError(r.Context(), w, domain.ErrServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// Livez checks if the service is alive.
func (s *MeetingAgentAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// principalHandler is a route that runs on behalf of an authenticated user.
type principalHandler func(w http.ResponseWriter, r *http.Request, userID string)

// authenticated resolves the caller from the Authorization header before
// running next.
func (s *MeetingAgentAPI) authenticated(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := strings.TrimSpace(r.Header.Get(constants.AuthorizationHeader))
		principal, err := s.authService.ParsePrincipal(ctx, token, slog.Default())
		if err != nil {
			slog.WarnContext(ctx, "failed to authenticate request", logging.ErrKey, err)
			writeError(ctx, w, err)
			return
		}

		ctx = context.WithValue(ctx, constants.PrincipalContextID, principal)
		ctx = logging.AppendCtx(ctx, slog.String("principal", principal))
		next(w, r.WithContext(ctx), principal)
	}
}

// pathIDHandler is an authenticated route addressed by an {id} path segment.
type pathIDHandler func(w http.ResponseWriter, r *http.Request, userID, id string)

func withPathID(mux goahttp.Muxer, next pathIDHandler) principalHandler {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		id := mux.Vars(r)["id"]
		if id == "" {
			writeError(r.Context(), w, domain.NewValidationError("missing id"))
			return
		}
		next(w, r, userID, id)
	}
}

// decodeBody decodes the JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := goahttp.RequestDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("request body is empty")
		}
		return domain.NewValidationError("invalid request body", err)
	}
	return nil
}

// writeJSON encodes v with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", logging.ErrKey, err)
	}
}

// httpStatus maps a domain error to its HTTP status code.
func httpStatus(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the public message of err with its mapped status.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err, "status", status)
	}
	writeJSON(ctx, w, status, errorResponse{Error: domain.PublicMessage(err)})
}
