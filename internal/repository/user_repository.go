package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: email already registered", workflow.ErrConflict)
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", workflow.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.update(ctx, id, map[string]interface{}{"role": role})
}

func (r *UserRepository) UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret string) error {
	return r.update(ctx, id, map[string]interface{}{
		"two_factor_enabled": enabled,
		"two_factor_secret":  secret,
	})
}

func (r *UserRepository) update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL reports unchanged rows as unaffected.
		_, err := r.GetByID(ctx, id)
		return err
	}
	return nil
}
