// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Stream webhook event types handled by the service.
const (
	StreamEventCallSessionStarted         = "call.session_started"
	StreamEventCallSessionParticipantLeft = "call.session_participant_left"
	StreamEventCallSessionEnded           = "call.session_ended"
	StreamEventCallTranscriptionReady     = "call.transcription_ready"
	StreamEventCallRecordingReady         = "call.recording_ready"
)

// DefaultCallType is the Stream call type used for every meeting call.
const DefaultCallType = "default"

// CallRef identifies a live call session by its type and id.
type CallRef struct {
	Type string
	ID   string
}

// NewMeetingCallRef returns the call reference of the given meeting.
func NewMeetingCallRef(meetingID string) CallRef {
	return CallRef{Type: DefaultCallType, ID: meetingID}
}

// CID renders the composite call id "type:id".
func (c CallRef) CID() string {
	return c.Type + ":" + c.ID
}

// MeetingIDFromCallCID extracts the meeting id from a composite call id of the
// form "<call-type>:<meeting-id>". It returns the second colon-separated
// segment, or an empty string when the value has no separator.
func MeetingIDFromCallCID(callCID string) string {
	parts := strings.Split(callCID, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// StreamWebhookEvent is a decoded Stream webhook event. The set of
// implementations is closed; anything the service does not handle decodes to
// [UnknownStreamWebhookEvent].
type StreamWebhookEvent interface {
	EventType() string
	isStreamWebhookEvent()
}

// StreamCallCustom holds the custom data attached to a Stream call.
type StreamCallCustom map[string]any

// MeetingID returns the meetingId custom field when it is a non-empty string.
func (c StreamCallCustom) MeetingID() string {
	if c == nil {
		return ""
	}
	id, _ := c["meetingId"].(string)
	return id
}

// StreamCall is the call object embedded in session events.
type StreamCall struct {
	CID       string           `json:"cid"`
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Custom    StreamCallCustom `json:"custom,omitempty"`
	CreatedAt *time.Time       `json:"created_at,omitempty"`
}

// StreamCallParticipant is the participant object of participant events.
type StreamCallParticipant struct {
	UserSessionID string `json:"user_session_id"`
	Role          string `json:"role"`
	User          struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"user"`
}

// StreamCallArtifact describes a transcription or recording file.
type StreamCallArtifact struct {
	Filename  string     `json:"filename"`
	URL       string     `json:"url"`
	SessionID string     `json:"session_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// CallSessionStartedEvent is sent when the first participant joins a call.
type CallSessionStartedEvent struct {
	Type      string     `json:"type"`
	CallCID   string     `json:"call_cid"`
	SessionID string     `json:"session_id"`
	Call      StreamCall `json:"call"`
}

// MeetingID returns the meeting id from the call custom data.
func (e CallSessionStartedEvent) MeetingID() string { return e.Call.Custom.MeetingID() }

// CallSessionParticipantLeftEvent is sent when a participant leaves a call session.
type CallSessionParticipantLeftEvent struct {
	Type        string                `json:"type"`
	CallCID     string                `json:"call_cid"`
	SessionID   string                `json:"session_id"`
	Participant StreamCallParticipant `json:"participant"`
}

// MeetingID returns the meeting id encoded in the composite call id.
func (e CallSessionParticipantLeftEvent) MeetingID() string { return MeetingIDFromCallCID(e.CallCID) }

// CallSessionEndedEvent is sent when a call session ends.
type CallSessionEndedEvent struct {
	Type      string     `json:"type"`
	CallCID   string     `json:"call_cid"`
	SessionID string     `json:"session_id"`
	Call      StreamCall `json:"call"`
}

// MeetingID returns the meeting id from the call custom data.
func (e CallSessionEndedEvent) MeetingID() string { return e.Call.Custom.MeetingID() }

// CallTranscriptionReadyEvent is sent when a call transcription file is available.
type CallTranscriptionReadyEvent struct {
	Type              string             `json:"type"`
	CallCID           string             `json:"call_cid"`
	CallTranscription StreamCallArtifact `json:"call_transcription"`
}

// MeetingID returns the meeting id encoded in the composite call id.
func (e CallTranscriptionReadyEvent) MeetingID() string { return MeetingIDFromCallCID(e.CallCID) }

// CallRecordingReadyEvent is sent when a call recording file is available.
type CallRecordingReadyEvent struct {
	Type          string             `json:"type"`
	CallCID       string             `json:"call_cid"`
	CallRecording StreamCallArtifact `json:"call_recording"`
}

// MeetingID returns the meeting id encoded in the composite call id.
func (e CallRecordingReadyEvent) MeetingID() string { return MeetingIDFromCallCID(e.CallCID) }

// UnknownStreamWebhookEvent is any event whose type the service does not handle,
// including payloads without a type.
type UnknownStreamWebhookEvent struct {
	Type string
}

func (e CallSessionStartedEvent) EventType() string { return StreamEventCallSessionStarted }
func (e CallSessionParticipantLeftEvent) EventType() string {
	return StreamEventCallSessionParticipantLeft
}
func (e CallSessionEndedEvent) EventType() string       { return StreamEventCallSessionEnded }
func (e CallTranscriptionReadyEvent) EventType() string { return StreamEventCallTranscriptionReady }
func (e CallRecordingReadyEvent) EventType() string     { return StreamEventCallRecordingReady }
func (e UnknownStreamWebhookEvent) EventType() string   { return e.Type }

func (CallSessionStartedEvent) isStreamWebhookEvent()         {}
func (CallSessionParticipantLeftEvent) isStreamWebhookEvent() {}
func (CallSessionEndedEvent) isStreamWebhookEvent()           {}
func (CallTranscriptionReadyEvent) isStreamWebhookEvent()     {}
func (CallRecordingReadyEvent) isStreamWebhookEvent()         {}
func (UnknownStreamWebhookEvent) isStreamWebhookEvent()       {}

// streamWebhookEnvelope is the part of every event needed to pick its type.
// The type stays raw so a non-string value is an unknown event, not a
// decode failure.
type streamWebhookEnvelope struct {
	Type json.RawMessage `json:"type"`
}

// eventType returns the type tag, or "" when it is absent or not a string.
func (e streamWebhookEnvelope) eventType() string {
	var tag string
	if len(e.Type) == 0 || json.Unmarshal(e.Type, &tag) != nil {
		return ""
	}
	return tag
}

// DecodeStreamWebhookEvent parses a raw webhook body into a typed event.
// A body that is not a JSON object returns an error; an object whose type is
// missing, not a string or not handled returns an [UnknownStreamWebhookEvent].
func DecodeStreamWebhookEvent(raw []byte) (StreamWebhookEvent, error) {
	var envelope streamWebhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid webhook body: %w", err)
	}

	eventType := envelope.eventType()
	switch eventType {
	case StreamEventCallSessionStarted:
		return decodeStreamEvent[CallSessionStartedEvent](raw)
	case StreamEventCallSessionParticipantLeft:
		return decodeStreamEvent[CallSessionParticipantLeftEvent](raw)
	case StreamEventCallSessionEnded:
		return decodeStreamEvent[CallSessionEndedEvent](raw)
	case StreamEventCallTranscriptionReady:
		return decodeStreamEvent[CallTranscriptionReadyEvent](raw)
	case StreamEventCallRecordingReady:
		return decodeStreamEvent[CallRecordingReadyEvent](raw)
	default:
		return UnknownStreamWebhookEvent{Type: eventType}, nil
	}
}

func decodeStreamEvent[T StreamWebhookEvent](raw []byte) (StreamWebhookEvent, error) {
	var event T
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", event.EventType(), err)
	}
	return event, nil
}
