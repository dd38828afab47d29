package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
	"loan-service/pkg/common"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.LoanAccount) error
	GetByUserID(ctx context.Context, userID string) (*models.LoanAccount, error)
}

type AccountService struct {
	Accounts AccountStore
	Users    UserStore
	Logger   *log.Logger
	Now      func() time.Time
}

func NewAccountService(accounts AccountStore, users UserStore, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.Default()
	}
	return &AccountService{
		Accounts: accounts,
		Users:    users,
		Logger:   logger.With("component", "accounts"),
		Now:      time.Now,
	}
}

type OpenAccountDTO struct {
	UserID           string          `json:"user_id"`
	Principal        decimal.Decimal `json:"principal"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

func (s *AccountService) GetMine(ctx context.Context, p workflow.Principal) (*models.LoanAccount, error) {
	if p.ID == "" {
		return nil, workflow.ErrAuthentication
	}
	return s.Accounts.GetByUserID(ctx, p.ID)
}

// Open creates the loan account backing a user's withdrawals. Admin only;
// a user holds at most one account.
func (s *AccountService) Open(ctx context.Context, p workflow.Principal, data OpenAccountDTO) (*models.LoanAccount, error) {
	if p.ID == "" {
		return nil, workflow.ErrAuthentication
	}
	if !workflow.CanAdminister(p) {
		return nil, fmt.Errorf("%w: admin role required", workflow.ErrAuthorization)
	}

	userID := strings.TrimSpace(data.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", workflow.ErrValidation)
	}
	if !data.Principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be greater than zero", workflow.ErrValidation)
	}
	if data.AvailableBalance.IsNegative() || data.AvailableBalance.GreaterThan(data.Principal) {
		return nil, fmt.Errorf("%w: available_balance must be between zero and the principal", workflow.ErrValidation)
	}

	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.Accounts.GetByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: user already has a loan account", workflow.ErrValidation)
	} else if !errors.Is(err, workflow.ErrNotFound) {
		return nil, err
	}

	now := s.Now().UTC()
	account := &models.LoanAccount{
		ID:               uuid.NewString(),
		UserID:           userID,
		AccountNumber:    common.GenerateAccountNumber(),
		Principal:        data.Principal.Round(2),
		AvailableBalance: data.AvailableBalance.Round(2),
		Status:           "active",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, workflow.ErrConflict) {
			return nil, fmt.Errorf("%w: user already has a loan account", workflow.ErrValidation)
		}
		return nil, err
	}

	s.Logger.Info("loan account opened", "user_id", userID, "account", account.AccountNumber, "by", p.ID)
	return account, nil
}
