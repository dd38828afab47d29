package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

// LoanAccountRepository stores loan accounts and serves as the workflow's
// balance provider.
type LoanAccountRepository struct {
	DB *gorm.DB
}

func NewLoanAccountRepository(db *gorm.DB) *LoanAccountRepository {
	return &LoanAccountRepository{DB: db}
}

func (r *LoanAccountRepository) Create(ctx context.Context, account *models.LoanAccount) error {
	err := r.DB.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: loan account already exists", workflow.ErrConflict)
	}
	return err
}

func (r *LoanAccountRepository) GetByUserID(ctx context.Context, userID string) (*models.LoanAccount, error) {
	var account models.LoanAccount
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no loan account found", workflow.ErrNotFound)
		}
		return nil, err
	}
	return &account, nil
}

func (r *LoanAccountRepository) AvailableBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	account, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.AvailableBalance, nil
}
