package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance represents the database model for a user's token balance
type Balance struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balances_user_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	UpdatedAt time.Time       `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Balance
func (Balance) TableName() string {
	return "balances"
}
