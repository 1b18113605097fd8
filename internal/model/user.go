package model

import "time"

// User is an account that owns categories and todos.
// PasswordHash is nil for accounts created through an external identity provider.
type User struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)"`
	Email        string  `gorm:"uniqueIndex;size:320;not null"`
	Username     string  `gorm:"size:50;not null"`
	PasswordHash *string `gorm:"size:255"`
	ExternalID   *string `gorm:"uniqueIndex;size:255"`
	Picture      *string
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}
