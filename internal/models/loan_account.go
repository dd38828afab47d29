package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanAccount struct {
	ID               string          `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	UserID           string          `gorm:"column:user_id;type:char(36);not null;uniqueIndex" json:"user_id"`
	AccountNumber    string          `gorm:"column:account_number;size:20;not null;uniqueIndex" json:"account_number"`
	Principal        decimal.Decimal `gorm:"column:principal;type:decimal(20,2);not null" json:"principal"`
	AvailableBalance decimal.Decimal `gorm:"column:available_balance;type:decimal(20,2);default:0.00" json:"available_balance"`
	Status           string          `gorm:"column:status;size:20;default:active" json:"status"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LoanAccount) TableName() string {
	return "loan_accounts"
}
