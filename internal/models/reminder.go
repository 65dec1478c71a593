package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryStatus is the lifecycle state of a reminder email
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// EmailDelivery tracks one scheduled reminder email for a study block.
// The unique dedupe key guarantees at most one record per block, even when
// scheduling is attempted more than once.
type EmailDelivery struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	BlockID        string         `gorm:"size:36;not null;index" json:"block_id"`
	UserID         string         `gorm:"size:36;not null;index" json:"user_id"`
	RecipientEmail string         `gorm:"size:255" json:"recipient_email,omitempty"`
	ScheduledFor   time.Time      `gorm:"not null;index:idx_delivery_status_due,priority:2" json:"scheduled_for"`
	Status         DeliveryStatus `gorm:"size:12;not null;default:pending;index:idx_delivery_status_due,priority:1" json:"status"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	DedupeKey      string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

// ReminderDedupeKey derives the deduplication token for a block's reminder.
// One block maps to at most one reminder record under this key.
func ReminderDedupeKey(blockID string) string {
	return fmt.Sprintf("block-%s-reminder", blockID)
}

// IsTerminal reports whether the status admits no further transitions
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliverySent || s == DeliveryFailed || s == DeliveryCancelled
}

// BeforeCreate hook is called before creating a new delivery record
func (d *EmailDelivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = DeliveryPending
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the EmailDelivery model
func (EmailDelivery) TableName() string {
	return "email_delivery"
}
