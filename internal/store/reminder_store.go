package store

import (
	"errors"
	"fmt"
	"time"

	"quiethours/internal/models"

	"gorm.io/gorm"
)

// CreateOutcome reports whether an insert wrote a new row or hit the
// unique dedupe constraint
type CreateOutcome int

const (
	Inserted CreateOutcome = iota
	AlreadyExists
)

// ReminderStore is the data-access layer for email delivery records
type ReminderStore struct {
	conn Conn
}

// NewReminderStore creates a reminder store backed by the given connection
func NewReminderStore(conn Conn) *ReminderStore {
	return &ReminderStore{conn: conn}
}

// Create inserts a delivery record. A duplicate dedupe key is not an error:
// it means the block's reminder was already scheduled, and the caller gets
// AlreadyExists as an explicit branch instead of a raised failure.
func (s *ReminderStore) Create(record *models.EmailDelivery) (CreateOutcome, error) {
	db, err := s.conn.DB()
	if err != nil {
		return Inserted, err
	}

	if err := db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return AlreadyExists, nil
		}
		return Inserted, fmt.Errorf("failed to create delivery record: %w", err)
	}
	return Inserted, nil
}

// FindDue returns pending records whose scheduled time falls in [from, until]
func (s *ReminderStore) FindDue(from, until time.Time) ([]models.EmailDelivery, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var records []models.EmailDelivery
	err = db.Where("status = ? AND scheduled_for >= ? AND scheduled_for <= ?",
		models.DeliveryPending, from, until).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	return records, nil
}

// MarkSent transitions a pending record to sent. The status guard in the
// WHERE clause keeps terminal records immutable.
func (s *ReminderStore) MarkSent(id string, sentAt time.Time) error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}

	return db.Model(&models.EmailDelivery{}).
		Where("id = ? AND status = ?", id, models.DeliveryPending).
		Updates(map[string]interface{}{
			"status":  models.DeliverySent,
			"sent_at": sentAt,
		}).Error
}

// MarkFailed transitions a pending record to failed
func (s *ReminderStore) MarkFailed(id string) error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}

	return db.Model(&models.EmailDelivery{}).
		Where("id = ? AND status = ?", id, models.DeliveryPending).
		Update("status", models.DeliveryFailed).Error
}

// CancelPendingForBlock cancels any still-pending reminder for a block.
// Sent and failed records are left untouched.
func (s *ReminderStore) CancelPendingForBlock(blockID string) error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}

	return db.Model(&models.EmailDelivery{}).
		Where("block_id = ? AND status = ?", blockID, models.DeliveryPending).
		Update("status", models.DeliveryCancelled).Error
}

// PurgeTerminal deletes sent and failed records scheduled before the cutoff.
// Cancelled records are deliberately excluded.
func (s *ReminderStore) PurgeTerminal(cutoff time.Time) (int64, error) {
	db, err := s.conn.DB()
	if err != nil {
		return 0, err
	}

	result := db.Where("scheduled_for < ? AND status IN ?",
		cutoff, []models.DeliveryStatus{models.DeliverySent, models.DeliveryFailed}).
		Delete(&models.EmailDelivery{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge old reminders: %w", result.Error)
	}
	return result.RowsAffected, nil
}
