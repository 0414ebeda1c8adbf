package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeRate is the single row holding the currency to token rate.
// Singleton is always true and unique, so a second row cannot be inserted.
type ExchangeRate struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Singleton  bool            `gorm:"not null;default:true;uniqueIndex:idx_exchange_rates_singleton"`
	Rate       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	LastUpdate time.Time       `gorm:"not null"`
}

// TableName specifies the table name for ExchangeRate
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
