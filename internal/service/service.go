// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service holds the business logic of the meeting agent service.
package service

// Service is implemented by every service the API depends on.
type Service interface {
	ServiceReady() bool
}

var (
	_ Service = (*AuthService)(nil)
	_ Service = (*AgentService)(nil)
	_ Service = (*MeetingService)(nil)
	_ Service = (*MeetingLifecycleService)(nil)
	_ Service = (*StreamWebhookService)(nil)
)
