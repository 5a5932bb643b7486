// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// Attribute keys carried alongside every job, as NATS headers or Pub/Sub attributes.
const (
	AttributeJobID   = "job-id"
	AttributeJobName = "job-name"
)

// EncodeJob renders the job envelope as JSON.
func EncodeJob(job models.Job) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job %s: %w", job.Name, err)
	}
	return data, nil
}

// JobAttributes returns the routing attributes of a job: its id and name plus
// every top-level string field of its data, keyed by JSON name, so that
// consumers can filter without decoding the body.
func JobAttributes(job models.Job) (map[string]string, error) {
	attrs := map[string]string{
		AttributeJobID:   job.ID,
		AttributeJobName: job.Name,
	}
	if job.Data == nil {
		return attrs, nil
	}

	var fields map[string]any
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job data decoder: %w", err)
	}
	if err := decoder.Decode(job.Data); err != nil {
		return nil, fmt.Errorf("failed to decode job data: %w", err)
	}

	for key, value := range fields {
		if s, ok := value.(string); ok && s != "" {
			attrs[key] = s
		}
	}
	return attrs, nil
}
