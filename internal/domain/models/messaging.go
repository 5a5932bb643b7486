// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects that the meeting agent service publishes or subscribes to.
const (
	// MeetingProcessingJobSubject is the subject downstream processors consume
	// post-call jobs from.
	// The subject is of the form: lfx.meeting-agent.jobs.meetings_processing
	MeetingProcessingJobSubject = "lfx.meeting-agent.jobs.meetings_processing"

	// MeetingSummarizedSubject is the subject downstream processors publish
	// finished summaries on.
	// The subject is of the form: lfx.meeting-agent.meetings.summarized
	MeetingSummarizedSubject = "lfx.meeting-agent.meetings.summarized"
)

// Job names understood by downstream processors.
const (
	// JobNameMeetingProcessing summarizes a finished meeting from its transcript.
	JobNameMeetingProcessing = "meetings/processing"
)

// Job is a unit of asynchronous work handed to a downstream processor.
type Job struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"ts"`
}

// MeetingProcessingJobData is the payload of a [JobNameMeetingProcessing] job.
type MeetingProcessingJobData struct {
	MeetingID     string `json:"meetingId"`
	TranscriptURL string `json:"transcriptUrl"`
}

// MeetingSummarizedMessage is published by the downstream processor once a
// meeting summary is ready.
type MeetingSummarizedMessage struct {
	MeetingID string `json:"meeting_id"`
	Summary   string `json:"summary"`
}
