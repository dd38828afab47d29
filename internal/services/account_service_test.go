package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-service/internal/models"
	"loan-service/internal/testutil"
	"loan-service/internal/workflow"
)

func TestOpenAccount(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUserStore()
	accounts := testutil.NewAccountStore()
	svc := NewAccountService(accounts, users, nil)

	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleUser}))
	admin := workflow.Principal{ID: "admin-1", Role: models.RoleAdmin}
	owner := workflow.Principal{ID: "u1", Role: models.RoleUser}

	data := OpenAccountDTO{
		UserID:           "u1",
		Principal:        decimal.NewFromInt(5000),
		AvailableBalance: decimal.RequireFromString("1250.755"),
	}

	_, err := svc.Open(ctx, owner, data)
	assert.ErrorIs(t, err, workflow.ErrAuthorization)

	_, err = svc.GetMine(ctx, owner)
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	account, err := svc.Open(ctx, admin, data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(account.AccountNumber, "LN"))
	assert.Equal(t, "1250.76", account.AvailableBalance.StringFixed(2))

	mine, err := svc.GetMine(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, account.ID, mine.ID)

	bal, err := accounts.AvailableBalance(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, bal.Equal(account.AvailableBalance))

	_, err = svc.Open(ctx, admin, data)
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

func TestOpenAccountValidation(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUserStore()
	svc := NewAccountService(testutil.NewAccountStore(), users, nil)
	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Email: "ada@example.com"}))
	admin := workflow.Principal{ID: "admin-1", Role: models.RoleAdmin}

	cases := []struct {
		name string
		data OpenAccountDTO
		want error
	}{
		{"missing user id", OpenAccountDTO{Principal: decimal.NewFromInt(10)}, workflow.ErrValidation},
		{"zero principal", OpenAccountDTO{UserID: "u1"}, workflow.ErrValidation},
		{"balance above principal", OpenAccountDTO{UserID: "u1", Principal: decimal.NewFromInt(10), AvailableBalance: decimal.NewFromInt(11)}, workflow.ErrValidation},
		{"negative balance", OpenAccountDTO{UserID: "u1", Principal: decimal.NewFromInt(10), AvailableBalance: decimal.NewFromInt(-1)}, workflow.ErrValidation},
		{"unknown user", OpenAccountDTO{UserID: "ghost", Principal: decimal.NewFromInt(10)}, workflow.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Open(ctx, admin, tc.data)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
