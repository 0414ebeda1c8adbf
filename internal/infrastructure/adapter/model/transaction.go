package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents the database model for transactions
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_created,priority:1"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Type          string          `gorm:"not null;size:50"`
	Status        string          `gorm:"not null;size:50;index"`
	Rate          decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	Tokens        decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	ResultBalance decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	ErrorMessage  string          `gorm:"type:text"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_transactions_user_created,priority:2,sort:desc"`
	ProcessedAt   *time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
