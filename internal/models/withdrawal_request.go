package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalRequest struct {
	ID          string           `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	OwnerUserID string           `gorm:"column:owner_user_id;type:char(36);not null;index:idx_withdrawal_owner" json:"owner_user_id"`
	Amount      decimal.Decimal  `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Reason      string           `gorm:"column:reason;type:text;not null" json:"reason"`
	Urgency     Urgency          `gorm:"column:urgency;size:20;not null;default:normal" json:"urgency"`
	Status      WithdrawalStatus `gorm:"column:status;size:20;not null;default:pending;index" json:"status"`
	AdminNotes  *string          `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	CreatedAt   time.Time        `gorm:"column:created_at;index:idx_withdrawal_owner" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
