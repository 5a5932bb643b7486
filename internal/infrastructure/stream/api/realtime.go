// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

const (
	connectAgentPath = "/video/connect_agent"
	writeTimeout     = 10 * time.Second

	// modelAPIKeyHeader carries the realtime model credential on the agent handshake.
	modelAPIKeyHeader = "X-Model-Api-Key"
)

// sessionUpdate is the realtime session configuration event.
type sessionUpdate struct {
	Type    string               `json:"type"`
	Session sessionConfiguration `json:"session"`
}

type sessionConfiguration struct {
	Instructions string `json:"instructions"`
}

// agentSession is a realtime connection of an AI participant to one call.
type agentSession struct {
	call models.CallRef
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}

	// onClose runs once when the session closes.
	onClose func()
}

var _ domain.AgentSession = (*agentSession)(nil)

// ConnectAgent binds an AI participant to the call. The returned session is
// connected and ready to receive a session update.
func (c *Client) ConnectAgent(ctx context.Context, call models.CallRef, creds domain.AgentCredentials) (domain.AgentSession, error) {
	if creds.AgentUserID == "" {
		return nil, fmt.Errorf("agent user id is required")
	}
	if creds.ModelAPIKey == "" {
		return nil, fmt.Errorf("model api key is required")
	}

	endpoint, err := c.connectAgentURL(call, creds)
	if err != nil {
		return nil, err
	}

	token, err := CallToken(c.config.APISecret, creds.AgentUserID, []string{call.CID()}, time.Now())
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", token)
	header.Set("stream-auth-type", "jwt")
	header.Set(modelAPIKeyHeader, creds.ModelAPIKey)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect agent to call %s (status %d): %w", call.CID(), resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect agent to call %s: %w", call.CID(), err)
	}

	session := &agentSession{
		call: call,
		conn: conn,
		done: make(chan struct{}),
	}
	session.onClose = func() { c.forgetSession(session) }
	go session.readLoop(context.WithoutCancel(ctx))

	c.registerSession(ctx, session)

	slog.InfoContext(ctx, "agent connected to stream call",
		"call_cid", call.CID(),
		"agent_user_id", creds.AgentUserID,
	)
	return session, nil
}

// connectAgentURL builds the websocket endpoint from the configured base URL.
func (c *Client) connectAgentURL(call models.CallRef, creds domain.AgentCredentials) (string, error) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid stream base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + connectAgentPath

	q := url.Values{}
	q.Set("api_key", c.config.APIKey)
	q.Set("call_type", call.Type)
	q.Set("call_id", call.ID)
	if creds.Model != "" {
		q.Set("model", creds.Model)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// registerSession tracks the session so that ending the call releases it. A
// previous session for the same call is closed.
func (c *Client) registerSession(ctx context.Context, s *agentSession) {
	c.mu.Lock()
	previous := c.sessions[s.call.CID()]
	c.sessions[s.call.CID()] = s
	c.mu.Unlock()

	if previous != nil {
		slog.WarnContext(ctx, "replacing existing agent session", "call_cid", s.call.CID())
		_ = previous.Close()
	}
}

// forgetSession drops s from the registry if it is still the session of its call.
func (c *Client) forgetSession(s *agentSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[s.call.CID()] == s {
		delete(c.sessions, s.call.CID())
	}
}

// releaseSession closes and forgets the session of the call, if any.
func (c *Client) releaseSession(ctx context.Context, call models.CallRef) {
	c.mu.Lock()
	s := c.sessions[call.CID()]
	delete(c.sessions, call.CID())
	c.mu.Unlock()

	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		slog.WarnContext(ctx, "failed to close agent session", "call_cid", call.CID(), logging.ErrKey, err)
	}
}

// ActiveSessions returns the number of agent sessions currently held.
func (c *Client) ActiveSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Close releases every agent session.
func (c *Client) Close() error {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*agentSession)
	c.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UpdateSession pushes the agent instructions to the realtime session.
func (s *agentSession) UpdateSession(ctx context.Context, instructions string) error {
	payload, err := json.Marshal(sessionUpdate{
		Type:    "session.update",
		Session: sessionConfiguration{Instructions: instructions},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session update: %w", err)
	}

	select {
	case <-s.done:
		return fmt.Errorf("agent session for call %s is closed", s.call.CID())
	default:
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(deadline)
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to send session update to call %s: %w", s.call.CID(), err)
	}
	return nil
}

// Close shuts the realtime connection down and unregisters the session. It
// is safe to call more than once.
func (s *agentSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}

		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()

		err = s.conn.Close()
	})
	return err
}

// readLoop drains server events until the connection goes away.
func (s *agentSession) readLoop(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.WarnContext(ctx, "agent session read failed", "call_cid", s.call.CID(), logging.ErrKey, err)
				}
			}
			return
		}

		var event struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}
		if event.Type == "error" {
			slog.ErrorContext(ctx, "agent session reported an error", "call_cid", s.call.CID(), "event", string(data))
			continue
		}
		slog.DebugContext(ctx, "agent session event", "call_cid", s.call.CID(), "type", event.Type)
	}
}
