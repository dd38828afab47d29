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

type WithdrawalRepository struct {
	DB *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{DB: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: withdrawal request %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return &req, nil
}

func (r *WithdrawalRepository) ListByOwner(ctx context.Context, ownerID string, page workflow.Page) ([]models.WithdrawalRequest, int64, error) {
	return r.list(r.DB.WithContext(ctx).Where("owner_user_id = ?", ownerID), page)
}

func (r *WithdrawalRepository) ListAll(ctx context.Context, page workflow.Page) ([]models.WithdrawalRequest, int64, error) {
	return r.list(r.DB.WithContext(ctx), page)
}

func (r *WithdrawalRepository) list(query *gorm.DB, page workflow.Page) ([]models.WithdrawalRequest, int64, error) {
	query = query.Model(&models.WithdrawalRequest{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := []models.WithdrawalRequest{}
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(page.Size).Offset(page.Offset()).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ConditionalUpdateStatus only touches the row while it is still in the
// expected status, so of two racing updates exactly one reports true.
func (r *WithdrawalRepository) ConditionalUpdateStatus(ctx context.Context, id string, expected, next models.WithdrawalStatus, fields workflow.WithdrawalFields) (bool, error) {
	updates := map[string]interface{}{
		"status":     next,
		"updated_at": time.Now().UTC(),
	}
	if fields.AdminNotes != nil {
		updates["admin_notes"] = *fields.AdminNotes
	}

	result := r.DB.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountByStatus groups all withdrawal requests by status.
func (r *WithdrawalRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.DB, &models.WithdrawalRequest{})
}

func countByStatus(ctx context.Context, db *gorm.DB, model interface{}) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.WithContext(ctx).Model(model).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
