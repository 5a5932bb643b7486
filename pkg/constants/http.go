// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// StreamSignatureHeader carries the HMAC signature of a Stream webhook body
	StreamSignatureHeader string = "X-Signature"

	// StreamAPIKeyHeader carries the API key of the Stream app that sent a webhook
	StreamAPIKeyHeader string = "X-Api-Key"
)

// HTTP paths handled outside of the authenticated API.
const (
	// StreamWebhookPath is where Stream delivers call events
	StreamWebhookPath = "/webhooks/stream"

	// LivezPath is the liveness probe
	LivezPath = "/livez"

	// ReadyzPath is the readiness probe
	ReadyzPath = "/readyz"
)

// MaxWebhookBodyBytes bounds the size of a webhook body read into memory.
const MaxWebhookBodyBytes int64 = 1 << 20

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextPrincipal is the type for the principal context key
type contextPrincipal string

// PrincipalContextID is the context ID for the authenticated user id
const PrincipalContextID contextPrincipal = "principal"
