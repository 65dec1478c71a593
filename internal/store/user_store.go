package store

import (
	"errors"
	"time"

	"quiethours/internal/models"

	"gorm.io/gorm"
)

// UserStore is the data-access layer for user accounts
type UserStore struct {
	conn Conn
}

// NewUserStore creates a user store backed by the given connection
func NewUserStore(conn Conn) *UserStore {
	return &UserStore{conn: conn}
}

// GetByID fetches a user by id
func (s *UserStore) GetByID(id string) (*models.User, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertFromGoogle finds the account for a Google subject, creating it on
// first sign-in, and refreshes the login timestamp and profile fields.
func (s *UserStore) UpsertFromGoogle(googleID, email, name, avatarURL string) (*models.User, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			GoogleID:  googleID,
			Email:     email,
			Name:      name,
			AvatarURL: avatarURL,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"last_login": time.Now(),
		"name":       name,
		"avatar_url": avatarURL,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
