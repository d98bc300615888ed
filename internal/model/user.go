package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account row. PasswordHash is nil for accounts created through
// Google sign-in that never set a local password.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	Email        string         `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash *string        `json:"-"`
	Verified     bool           `json:"verified" gorm:"not null;default:false"`
	Role         string         `json:"role" gorm:"size:20;not null;default:'user'"`
	AuthProvider string         `json:"-" gorm:"size:20;not null;default:'local'"`
	GoogleID     *string        `json:"-" gorm:"size:255;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
