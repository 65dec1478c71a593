package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a signed-in account. Accounts are created automatically on
// first Google sign-in; the identity provider owns authentication.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	GoogleID  string    `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	LastLogin time.Time `gorm:"not null" json:"last_login"`
}

// BeforeCreate hook is called before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	return nil
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "user"
}
