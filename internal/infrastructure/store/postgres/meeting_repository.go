// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-agent-service/internal/logging"
)

// MeetingRepository implements domain.MeetingRepository using GORM
type MeetingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ domain.MeetingRepository = (*MeetingRepository)(nil)

// NewMeetingRepository creates a new GORM meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db, now: time.Now}
}

func (r *MeetingRepository) IsReady(ctx context.Context) bool {
	return r.db != nil && Ping(ctx, r.db) == nil
}

func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	if err := r.db.WithContext(ctx).Create(meeting).Error; err != nil {
		slog.ErrorContext(ctx, "error creating meeting", logging.ErrKey, err, "meeting_id", meeting.ID)
		return domain.NewInternalError("failed to create meeting", err)
	}
	return nil
}

func (r *MeetingRepository) GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := r.db.WithContext(ctx).First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("meeting not found", err)
		}
		slog.ErrorContext(ctx, "error getting meeting", logging.ErrKey, err, "meeting_id", meetingID)
		return nil, domain.NewInternalError("failed to retrieve meeting", err)
	}
	return &meeting, nil
}

func (r *MeetingRepository) ListMeetingsByUser(ctx context.Context, userID string) ([]*models.Meeting, error) {
	meetings := []*models.Meeting{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&meetings).Error; err != nil {
		slog.ErrorContext(ctx, "error listing meetings", logging.ErrKey, err, "user_id", userID)
		return nil, domain.NewInternalError("failed to list meetings", err)
	}
	return meetings, nil
}

func (r *MeetingRepository) UpdateMeetingDetails(ctx context.Context, meetingID string, expected models.MeetingStatus, name, agentID string) (*models.Meeting, error) {
	return r.conditionalUpdate(ctx, meetingID, &expected, map[string]any{
		"name":       name,
		"agent_id":   agentID,
		"updated_at": r.now().UTC(),
	})
}

func (r *MeetingRepository) UpdateMeetingIf(ctx context.Context, meetingID string, expected *models.MeetingStatus, patch models.MeetingPatch) (*models.Meeting, error) {
	return r.conditionalUpdate(ctx, meetingID, expected, patch.Columns(r.now().UTC()))
}

// conditionalUpdate issues a single UPDATE ... WHERE id AND status ... RETURNING
// so that the status check and the write are one statement.
func (r *MeetingRepository) conditionalUpdate(ctx context.Context, meetingID string, expected *models.MeetingStatus, columns map[string]any) (*models.Meeting, error) {
	var updated []models.Meeting
	result := updateStatement(r.db.WithContext(ctx), &updated, meetingID, expected).Updates(columns)
	if result.Error != nil {
		slog.ErrorContext(ctx, "error updating meeting", logging.ErrKey, result.Error, "meeting_id", meetingID)
		return nil, domain.NewInternalError("failed to update meeting", result.Error)
	}
	if result.RowsAffected == 0 || len(updated) == 0 {
		if expected != nil {
			return nil, domain.NewNotFoundError("meeting not found in status " + string(*expected))
		}
		return nil, domain.NewNotFoundError("meeting not found")
	}
	return &updated[0], nil
}

func updateStatement(tx *gorm.DB, dest *[]models.Meeting, meetingID string, expected *models.MeetingStatus) *gorm.DB {
	tx = tx.Model(dest).Clauses(clause.Returning{}).Where("id = ?", meetingID)
	if expected != nil {
		tx = tx.Where("status = ?", string(*expected))
	}
	return tx
}
