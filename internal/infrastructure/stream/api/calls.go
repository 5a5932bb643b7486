// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
)

// EndCall marks the call as ended for every participant and releases any
// agent session the service holds for it.
func (c *Client) EndCall(ctx context.Context, call models.CallRef) error {
	path := fmt.Sprintf("/api/v2/video/call/%s/%s/mark_ended", url.PathEscape(call.Type), url.PathEscape(call.ID))

	resp, err := c.doRequest(ctx, http.MethodPost, path, struct{}{})
	if err != nil {
		return fmt.Errorf("failed to end call %s: %w", call.CID(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp.StatusCode, body)
	}

	c.releaseSession(ctx, call)

	slog.InfoContext(ctx, "ended stream call", "call_cid", call.CID())
	return nil
}
