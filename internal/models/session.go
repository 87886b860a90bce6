package models

import (
	"time"
)

// UserSession represents a logged-in session. The token is an opaque
// random value handed to the client after OAuth login.
type UserSession struct {
	BaseModel
	Token     string    `json:"token" gorm:"not null;size:64;uniqueIndex"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// TableName 指定表名
func (UserSession) TableName() string {
	return "user_sessions"
}

// IsExpired reports whether the session is past its expiry.
func (s *UserSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
