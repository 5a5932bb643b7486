// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// JobsStreamName is the JetStream stream that persists submitted jobs.
const JobsStreamName = "MEETING_AGENT_JOBS"

// JobsStreamConfig captures every job subject.
var JobsStreamConfig = jetstream.StreamConfig{
	Name:      JobsStreamName,
	Subjects:  []string{"lfx.meeting-agent.jobs.>"},
	Retention: jetstream.WorkQueuePolicy,
	Storage:   jetstream.FileStorage,
}

// INatsPublisher is the JetStream publishing interface needed by [NatsJobSubmitter].
type INatsPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// INatsConn reports the state of the underlying connection.
type INatsConn interface {
	IsConnected() bool
}

// NatsJobSubmitter submits jobs to a JetStream work queue.
type NatsJobSubmitter struct {
	conn      INatsConn
	publisher INatsPublisher
	subjects  map[string]string
}

var _ domain.JobSubmitter = (*NatsJobSubmitter)(nil)

// NewNatsJobSubmitter creates a new NatsJobSubmitter.
func NewNatsJobSubmitter(conn INatsConn, publisher INatsPublisher) *NatsJobSubmitter {
	return &NatsJobSubmitter{
		conn:      conn,
		publisher: publisher,
		subjects: map[string]string{
			models.JobNameMeetingProcessing: models.MeetingProcessingJobSubject,
		},
	}
}

// IsReady reports whether the NATS connection is up.
func (s *NatsJobSubmitter) IsReady() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Submit publishes the job and waits for the stream acknowledgement. The job
// id doubles as the JetStream message id, so a resubmitted job inside the
// stream's duplicate window is stored once.
func (s *NatsJobSubmitter) Submit(ctx context.Context, job models.Job) error {
	subject, ok := s.subjects[job.Name]
	if !ok {
		return domain.NewValidationError("unknown job name: " + job.Name)
	}

	data, err := EncodeJob(job)
	if err != nil {
		return domain.NewInternalError("failed to encode job", err)
	}

	attrs, err := JobAttributes(job)
	if err != nil {
		return domain.NewInternalError("failed to encode job attributes", err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	for key, value := range attrs {
		msg.Header.Set(key, value)
	}

	ack, err := s.publisher.PublishMsg(ctx, msg, jetstream.WithMsgID(job.ID))
	if err != nil {
		slog.ErrorContext(ctx, "error publishing job to NATS", logging.ErrKey, err,
			"subject", subject, "job_id", job.ID, "job_name", job.Name)
		return domain.NewUnavailableError("failed to submit job", err)
	}

	slog.DebugContext(ctx, "submitted job to NATS",
		"subject", subject,
		"job_id", job.ID,
		"job_name", job.Name,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
		"duplicate", ack.Duplicate,
	)
	return nil
}
