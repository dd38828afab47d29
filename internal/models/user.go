package models

import (
	"time"
)

type User struct {
	ID               string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Email            string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash     string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	FullName         string    `gorm:"column:full_name;size:255" json:"full_name"`
	Role             Role      `gorm:"column:role;size:20;not null;default:user" json:"role"`
	TwoFactorEnabled bool      `gorm:"column:two_factor_enabled;default:false" json:"two_factor_enabled"`
	TwoFactorSecret  string    `gorm:"column:two_factor_secret;size:64" json:"-"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
