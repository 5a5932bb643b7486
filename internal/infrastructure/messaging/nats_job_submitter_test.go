// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// MockNATSPublisher is a mock JetStream publisher
type MockNATSPublisher struct {
	mock.Mock
}

func (m *MockNATSPublisher) PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jetstream.PubAck), args.Error(1)
}

// MockNATSConn is a mock NATS connection
type MockNATSConn struct {
	mock.Mock
}

func (m *MockNATSConn) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func processingJob() models.Job {
	return models.Job{
		ID:        "job-1",
		Name:      models.JobNameMeetingProcessing,
		Data:      models.MeetingProcessingJobData{MeetingID: "m-1", TranscriptURL: "https://cdn.example/t.jsonl"},
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNatsJobSubmitter_Submit(t *testing.T) {
	t.Run("publishes job envelope with headers", func(t *testing.T) {
		publisher := new(MockNATSPublisher)
		var published *nats.Msg
		publisher.On("PublishMsg", mock.Anything, mock.AnythingOfType("*nats.Msg")).
			Run(func(args mock.Arguments) { published = args.Get(1).(*nats.Msg) }).
			Return(&jetstream.PubAck{Stream: JobsStreamName, Sequence: 1}, nil)

		submitter := NewNatsJobSubmitter(nil, publisher)
		err := submitter.Submit(context.Background(), processingJob())

		require.NoError(t, err)
		require.NotNil(t, published)
		assert.Equal(t, models.MeetingProcessingJobSubject, published.Subject)
		assert.Equal(t, "job-1", published.Header.Get(AttributeJobID))
		assert.Equal(t, models.JobNameMeetingProcessing, published.Header.Get(AttributeJobName))
		assert.Equal(t, "m-1", published.Header.Get("meetingId"))

		var envelope map[string]any
		require.NoError(t, json.Unmarshal(published.Data, &envelope))
		assert.Equal(t, "job-1", envelope["id"])
		assert.Equal(t, models.JobNameMeetingProcessing, envelope["name"])
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "m-1", data["meetingId"])
		assert.Equal(t, "https://cdn.example/t.jsonl", data["transcriptUrl"])
		publisher.AssertExpectations(t)
	})

	t.Run("publish failure is unavailable", func(t *testing.T) {
		publisher := new(MockNATSPublisher)
		publisher.On("PublishMsg", mock.Anything, mock.Anything).Return(nil, errors.New("no responders"))

		err := NewNatsJobSubmitter(nil, publisher).Submit(context.Background(), processingJob())

		assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
	})

	t.Run("unknown job name", func(t *testing.T) {
		publisher := new(MockNATSPublisher)
		job := processingJob()
		job.Name = "meetings/unknown"

		err := NewNatsJobSubmitter(nil, publisher).Submit(context.Background(), job)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
		publisher.AssertNotCalled(t, "PublishMsg", mock.Anything, mock.Anything)
	})
}

func TestNatsJobSubmitter_IsReady(t *testing.T) {
	conn := new(MockNATSConn)
	conn.On("IsConnected").Return(true).Once()
	conn.On("IsConnected").Return(false).Once()

	submitter := NewNatsJobSubmitter(conn, new(MockNATSPublisher))
	assert.True(t, submitter.IsReady())
	assert.False(t, submitter.IsReady())
	assert.False(t, NewNatsJobSubmitter(nil, nil).IsReady())
}

func TestJobAttributes(t *testing.T) {
	attrs, err := JobAttributes(processingJob())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		AttributeJobID:   "job-1",
		AttributeJobName: models.JobNameMeetingProcessing,
		"meetingId":      "m-1",
		"transcriptUrl":  "https://cdn.example/t.jsonl",
	}, attrs)

	attrs, err = JobAttributes(models.Job{ID: "job-2", Name: "x"})
	require.NoError(t, err)
	assert.Len(t, attrs, 2)
}

func TestNatsMessage(t *testing.T) {
	msg := NewNatsMessage(&nats.Msg{Subject: models.MeetingSummarizedSubject, Data: []byte(`{}`)})

	assert.Equal(t, models.MeetingSummarizedSubject, msg.Subject())
	assert.Equal(t, []byte(`{}`), msg.Data())
	assert.False(t, msg.HasReply())
	assert.NoError(t, msg.Respond([]byte("ignored")))
}
