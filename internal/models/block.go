package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudyBlock represents a scheduled quiet-hour study block. Times are stored
// in UTC; endAt must be after startAt.
type StudyBlock struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_block_user_start,priority:1" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	StartAt   time.Time `gorm:"not null;index:idx_block_user_start,priority:2" json:"start_at"`
	EndAt     time.Time `gorm:"not null" json:"end_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook is called before creating a new study block
func (b *StudyBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the StudyBlock model
func (StudyBlock) TableName() string {
	return "study_block"
}

// CreateBlockRequest represents the data needed to create a new study block
type CreateBlockRequest struct {
	Title   string    `json:"title" binding:"required,max=255"`
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}
