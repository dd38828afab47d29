package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

// UserStore is a map backed user repository keyed by id.
type UserStore struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{rows: map[string]models.User{}}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already registered", workflow.ErrConflict)
		}
	}
	s.rows[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", workflow.ErrNotFound)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user", workflow.ErrNotFound)
}

func (s *UserStore) UpdateRole(_ context.Context, id string, role models.Role) error {
	return s.update(id, func(u *models.User) { u.Role = role })
}

func (s *UserStore) UpdateTwoFactor(_ context.Context, id string, enabled bool, secret string) error {
	return s.update(id, func(u *models.User) {
		u.TwoFactorEnabled = enabled
		u.TwoFactorSecret = secret
	})
}

func (s *UserStore) update(id string, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("%w: user", workflow.ErrNotFound)
	}
	fn(&u)
	s.rows[id] = u
	return nil
}

// AccountStore is a map backed loan account repository keyed by user id. It
// also acts as a workflow.BalanceProvider.
type AccountStore struct {
	mu   sync.Mutex
	rows map[string]models.LoanAccount
}

func NewAccountStore() *AccountStore {
	return &AccountStore{rows: map[string]models.LoanAccount{}}
}

func (s *AccountStore) Create(_ context.Context, account *models.LoanAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[account.UserID]; ok {
		return fmt.Errorf("%w: loan account already exists", workflow.ErrConflict)
	}
	s.rows[account.UserID] = *account
	return nil
}

func (s *AccountStore) GetByUserID(_ context.Context, userID string) (*models.LoanAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no loan account found", workflow.ErrNotFound)
	}
	return &a, nil
}

func (s *AccountStore) AvailableBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	a, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return a.AvailableBalance, nil
}

// StatusCounts is a fixed reporting source.
type StatusCounts struct {
	Counts map[string]int64
	Err    error
}

func (c StatusCounts) CountByStatus(context.Context) (map[string]int64, error) {
	return c.Counts, c.Err
}
