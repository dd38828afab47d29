package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

type MeetingRepository struct {
	DB *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{DB: db}
}

func (r *MeetingRepository) Create(ctx context.Context, req *models.MeetingRequest) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.MeetingRequest, error) {
	var req models.MeetingRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meeting request %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return &req, nil
}

func (r *MeetingRepository) ListByOwner(ctx context.Context, ownerID string, page workflow.Page) ([]models.MeetingRequest, int64, error) {
	return r.list(r.DB.WithContext(ctx).Where("owner_user_id = ?", ownerID), page)
}

func (r *MeetingRepository) ListAll(ctx context.Context, page workflow.Page) ([]models.MeetingRequest, int64, error) {
	return r.list(r.DB.WithContext(ctx), page)
}

func (r *MeetingRepository) list(query *gorm.DB, page workflow.Page) ([]models.MeetingRequest, int64, error) {
	query = query.Model(&models.MeetingRequest{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := []models.MeetingRequest{}
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(page.Size).Offset(page.Offset()).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *MeetingRepository) ConditionalUpdateStatus(ctx context.Context, id string, expected, next models.MeetingStatus, fields workflow.MeetingFields) (bool, error) {
	updates := map[string]interface{}{
		"status":     next,
		"updated_at": time.Now().UTC(),
	}
	if fields.ScheduledDate != nil {
		updates["scheduled_date"] = *fields.ScheduledDate
	}
	if fields.ScheduledTime != nil {
		updates["scheduled_time"] = *fields.ScheduledTime
	}
	if fields.AdminNotes != nil {
		updates["admin_notes"] = *fields.AdminNotes
	}

	result := r.DB.WithContext(ctx).Model(&models.MeetingRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *MeetingRepository) SetMeetingLink(ctx context.Context, id string, link, externalID *string) error {
	result := r.DB.WithContext(ctx).Model(&models.MeetingRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"meeting_link":        link,
			"external_meeting_id": externalID,
			"updated_at":          time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}
	return nil
}

// WithinTx runs fn with a repository bound to a single transaction.
func (r *MeetingRepository) WithinTx(ctx context.Context, fn func(tx workflow.MeetingStore) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&MeetingRepository{DB: tx})
	})
}

func (r *MeetingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.DB, &models.MeetingRequest{})
}
