package model

import (
	"time"

	"github.com/google/uuid"
)

// Generation represents the database model for a requested audio generation
type Generation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_generations_user_created,priority:1"`
	Text           string    `gorm:"type:text;not null"`
	TokensSpent    int64     `gorm:"not null"`
	Status         string    `gorm:"not null;size:50;index"`
	ResultLocation *string   `gorm:"size:1024"`
	ErrorMessage   string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null;index:idx_generations_user_created,priority:2,sort:desc"`
	UpdatedAt      time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Generation
func (Generation) TableName() string {
	return "generations"
}
