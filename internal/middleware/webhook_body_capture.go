// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/constants"
)

// WebhookBodyContextKey is the context key for storing raw webhook body
type WebhookBodyContextKey struct{}

// WebhookBodyCaptureMiddleware captures the raw request body for webhook endpoints
// and stores it in the request context for signature validation. Bodies larger
// than maxBytes are rejected.
func WebhookBodyCaptureMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.MaxWebhookBodyBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != constants.StreamWebhookPath {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeBodyError(r.Context(), w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				slog.WarnContext(r.Context(), "failed to read webhook body", logging.ErrKey, err)
				writeBodyError(r.Context(), w, http.StatusBadRequest, "failed to read request body")
				return
			}
			_ = r.Body.Close()

			// The signature covers the exact bytes, so later readers get a fresh copy.
			r.Body = io.NopCloser(bytes.NewReader(body))
			ctx := context.WithValue(r.Context(), WebhookBodyContextKey{}, body)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bodyError is the error body written when a webhook body cannot be captured.
type bodyError struct {
	Error string `json:"error"`
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(bodyError{Error: message}); err != nil {
		slog.ErrorContext(ctx, "failed to encode error response", logging.ErrKey, err)
	}
}

// GetRawBodyFromContext extracts the raw body from the context
func GetRawBodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(WebhookBodyContextKey{}).([]byte)
	return body, ok
}
