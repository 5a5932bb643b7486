// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package gcppubsub submits jobs to Google Cloud Pub/Sub.
package gcppubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"cloud.google.com/go/pubsub"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// Config holds the Pub/Sub job submitter configuration
type Config struct {
	ProjectID string
	TopicName string
	// CreateTopic creates the topic when it does not exist yet.
	CreateTopic bool
}

// JobSubmitter publishes jobs to a Pub/Sub topic.
type JobSubmitter struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	closed atomic.Bool
}

var _ domain.JobSubmitter = (*JobSubmitter)(nil)

// NewJobSubmitter connects to Pub/Sub and resolves the job topic.
func NewJobSubmitter(ctx context.Context, cfg Config) (*JobSubmitter, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("pubsub project id is required")
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	s, err := NewJobSubmitterWithClient(ctx, client, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewJobSubmitterWithClient resolves the job topic on an existing client.
func NewJobSubmitterWithClient(ctx context.Context, client *pubsub.Client, cfg Config) (*JobSubmitter, error) {
	if cfg.TopicName == "" {
		return nil, fmt.Errorf("pubsub topic name is required")
	}

	topic := client.Topic(cfg.TopicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check if topic exists: %w", err)
	}

	if !exists {
		if !cfg.CreateTopic {
			return nil, fmt.Errorf("pubsub topic %s does not exist", cfg.TopicName)
		}
		slog.InfoContext(ctx, "pubsub topic does not exist, creating", "topic", cfg.TopicName)
		topic, err = client.CreateTopic(ctx, cfg.TopicName)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", cfg.TopicName, err)
		}
	}

	return &JobSubmitter{client: client, topic: topic}, nil
}

// IsReady reports whether the submitter can still publish.
func (s *JobSubmitter) IsReady() bool {
	return s.topic != nil && !s.closed.Load()
}

// Submit publishes the job and waits for the server to assign a message id.
func (s *JobSubmitter) Submit(ctx context.Context, job models.Job) error {
	if !s.IsReady() {
		return domain.NewUnavailableError("pubsub job submitter is closed")
	}

	data, err := messaging.EncodeJob(job)
	if err != nil {
		return domain.NewInternalError("failed to encode job", err)
	}

	attrs, err := messaging.JobAttributes(job)
	if err != nil {
		return domain.NewInternalError("failed to encode job attributes", err)
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish job to pubsub", logging.ErrKey, err,
			"topic", s.topic.ID(), "job_id", job.ID, "job_name", job.Name)
		return domain.NewUnavailableError("failed to submit job", err)
	}

	slog.DebugContext(ctx, "submitted job to pubsub",
		"topic", s.topic.ID(),
		"job_id", job.ID,
		"job_name", job.Name,
		"message_id", serverID,
	)
	return nil
}

// Close flushes pending publishes and releases the client.
func (s *JobSubmitter) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.topic != nil {
		s.topic.Stop()
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
