package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan-service/internal/models"
	"loan-service/pkg/common"
)

// NewPage normalizes user supplied pagination input.
func NewPage(number, size int) Page {
	number, size = common.NormalizePage(number, size)
	return Page{Number: number, Size: size}
}

type WithdrawalService struct {
	Store    WithdrawalStore
	Balances BalanceProvider
	Logger   *log.Logger
	Now      func() time.Time
}

func NewWithdrawalService(store WithdrawalStore, balances BalanceProvider, logger *log.Logger) *WithdrawalService {
	if logger == nil {
		logger = log.Default()
	}
	return &WithdrawalService{
		Store:    store,
		Balances: balances,
		Logger:   logger.With("component", "withdrawals"),
		Now:      time.Now,
	}
}

type CreateWithdrawalInput struct {
	Amount  decimal.Decimal
	Reason  string
	Urgency models.Urgency
}

func (in CreateWithdrawalInput) validate() error {
	if !in.Amount.IsPositive() {
		return validationf("amount must be greater than zero")
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return validationf("amount must have at most two decimal places")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return validationf("reason is required")
	}
	if !in.Urgency.Valid() {
		return validationf("urgency must be one of low, normal, high, urgent")
	}
	return nil
}

// Create files a new pending withdrawal for the calling user after checking
// the amount against the caller's available loan balance.
func (s *WithdrawalService) Create(ctx context.Context, p Principal, in CreateWithdrawalInput) (*models.WithdrawalRequest, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	balance, err := s.Balances.AvailableBalance(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if in.Amount.GreaterThan(balance) {
		return nil, fmt.Errorf("%w: requested %s exceeds available %s", ErrInsufficientFunds, in.Amount.StringFixed(2), balance.StringFixed(2))
	}

	now := s.Now().UTC()
	req := &models.WithdrawalRequest{
		ID:          uuid.NewString(),
		OwnerUserID: p.ID,
		Amount:      in.Amount,
		Reason:      strings.TrimSpace(in.Reason),
		Urgency:     in.Urgency,
		Status:      models.WithdrawalPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("saving withdrawal request: %w", err)
	}

	s.Logger.Info("withdrawal requested", "id", req.ID, "owner", p.ID, "amount", req.Amount.StringFixed(2), "urgency", req.Urgency)
	return req, nil
}

// ListForOwner returns the caller's own requests, newest first.
func (s *WithdrawalService) ListForOwner(ctx context.Context, p Principal, page Page) (PageResult[models.WithdrawalRequest], error) {
	if err := requireAuthenticated(p); err != nil {
		return PageResult[models.WithdrawalRequest]{}, err
	}
	items, total, err := s.Store.ListByOwner(ctx, p.ID, page)
	if err != nil {
		return PageResult[models.WithdrawalRequest]{}, fmt.Errorf("listing withdrawal requests: %w", err)
	}
	return PageResult[models.WithdrawalRequest]{Items: items, Total: total, Page: page}, nil
}

// ListAll returns every user's requests. Admin only.
func (s *WithdrawalService) ListAll(ctx context.Context, p Principal, page Page) (PageResult[models.WithdrawalRequest], error) {
	if err := requireAdmin(p); err != nil {
		return PageResult[models.WithdrawalRequest]{}, err
	}
	items, total, err := s.Store.ListAll(ctx, page)
	if err != nil {
		return PageResult[models.WithdrawalRequest]{}, fmt.Errorf("listing withdrawal requests: %w", err)
	}
	return PageResult[models.WithdrawalRequest]{Items: items, Total: total, Page: page}, nil
}

func (s *WithdrawalService) Get(ctx context.Context, p Principal, id string) (*models.WithdrawalRequest, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	req, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireViewer(p, req.OwnerUserID); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateStatus moves a request along the withdrawal graph. Admin only.
func (s *WithdrawalService) UpdateStatus(ctx context.Context, p Principal, id string, next models.WithdrawalStatus, adminNotes *string) (*models.WithdrawalRequest, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, validationf("unknown withdrawal status %q", next)
	}
	return s.transition(ctx, p, id, next, adminNotes)
}

// Complete marks an approved request as paid out. Completing a request twice
// fails with ErrInvalidTransition.
func (s *WithdrawalService) Complete(ctx context.Context, p Principal, id string) (*models.WithdrawalRequest, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.transition(ctx, p, id, models.WithdrawalCompleted, nil)
}

func (s *WithdrawalService) transition(ctx context.Context, p Principal, id string, next models.WithdrawalStatus, adminNotes *string) (*models.WithdrawalRequest, error) {
	current, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateWithdrawalTransition(current.Status, next); err != nil {
		return nil, err
	}

	ok, err := s.Store.ConditionalUpdateStatus(ctx, id, current.Status, next, WithdrawalFields{AdminNotes: adminNotes})
	if err != nil {
		return nil, fmt.Errorf("updating withdrawal status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: withdrawal %s is no longer %s", ErrConflict, id, current.Status)
	}

	s.Logger.Info("withdrawal status changed", "id", id, "from", current.Status, "to", next, "admin", p.ID)
	return s.Store.GetByID(ctx, id)
}
