// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/pkg/constants"
)

// IsHealthCheck reports whether r targets a probe endpoint. Probes are kept
// out of request logs and traces.
func IsHealthCheck(r *http.Request) bool {
	return r.URL.Path == constants.LivezPath || r.URL.Path == constants.ReadyzPath
}

// RequestLoggerMiddleware logs one line when a request arrives and one when
// its response is written. The response line is logged at warn level for
// client errors and error level for server errors.
func RequestLoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsHealthCheck(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			// Request attributes ride along on every log line of the handler.
			ctx := r.Context()
			ctx = logging.AppendCtx(ctx, slog.String("method", r.Method))
			ctx = logging.AppendCtx(ctx, slog.String("path", r.URL.Path))
			if r.URL.RawQuery != "" {
				ctx = logging.AppendCtx(ctx, slog.String("query", r.URL.RawQuery))
			}
			ctx = logging.AppendCtx(ctx, slog.String("user_agent", r.UserAgent()))
			ctx = logging.AppendCtx(ctx, slog.String("remote_addr", r.RemoteAddr))
			if requestID, ok := ctx.Value(constants.RequestIDContextID).(string); ok {
				ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))
			}
			r = r.WithContext(ctx)

			slog.InfoContext(ctx, "HTTP request")

			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			level := slog.LevelInfo
			switch {
			case sw.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case sw.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "HTTP response",
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}
