package model

import (
	"time"

	"github.com/google/uuid"
)

// UserLock is a lease on a user's settlements held by one process
type UserLock struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	LockID    string    `gorm:"not null;size:64"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for UserLock
func (UserLock) TableName() string {
	return "user_locks"
}
