package model

import "time"

const (
	TokenEmailVerify   = "email_verify"
	TokenPasswordReset = "password_reset"
	TokenEmailChange   = "email_change"
)

// ActionToken is a short-lived single-use token. NewEmail is only set for the
// email_change type and carries the address awaiting confirmation. Issuing a
// token supersedes any live token of the same type for the same user.
type ActionToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token     string    `json:"-" gorm:"size:64;not null;uniqueIndex"`
	Type      string    `json:"type" gorm:"size:30;not null;index:idx_action_tokens_user_type"`
	NewEmail  *string   `json:"-" gorm:"size:255"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
