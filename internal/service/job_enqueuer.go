// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// JobResult reports the outcome of a single job submission.
type JobResult struct {
	JobID   string
	JobName string
	Err     error
}

// Submitted reports whether the backend accepted the job.
func (r JobResult) Submitted() bool {
	return r.Err == nil
}

// JobEnqueuer builds jobs and hands them to a JobSubmitter. Submission
// failures never abort the caller; they are returned as a JobResult and
// logged as critical.
type JobEnqueuer struct {
	submitter domain.JobSubmitter
	newID     func() string
	now       func() time.Time
}

// NewJobEnqueuer creates a new JobEnqueuer.
func NewJobEnqueuer(submitter domain.JobSubmitter) *JobEnqueuer {
	return &JobEnqueuer{
		submitter: submitter,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IsReady reports whether the underlying submitter is ready.
func (e *JobEnqueuer) IsReady() bool {
	return e != nil && e.submitter != nil && e.submitter.IsReady()
}

// Enqueue submits a job with the given name and payload.
func (e *JobEnqueuer) Enqueue(ctx context.Context, name string, data any) JobResult {
	job := models.Job{
		ID:        e.newID(),
		Name:      name,
		Data:      data,
		Timestamp: e.now(),
	}
	result := JobResult{JobID: job.ID, JobName: job.Name}

	ctx = logging.AppendCtx(ctx, slog.String("job_id", job.ID))
	ctx = logging.AppendCtx(ctx, slog.String("job_name", job.Name))

	if e.submitter == nil {
		result.Err = domain.NewUnavailableError("job submitter is not configured")
	} else {
		result.Err = e.submitter.Submit(ctx, job)
	}

	if result.Err != nil {
		slog.ErrorContext(ctx, "failed to submit job", logging.ErrKey, result.Err, logging.PriorityCritical())
		return result
	}

	slog.InfoContext(ctx, "job submitted")
	return result
}
