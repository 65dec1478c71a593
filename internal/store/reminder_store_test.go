package store

import (
	"fmt"
	"testing"
	"time"

	"quiethours/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testConn struct {
	db *gorm.DB
}

func (c testConn) DB() (*gorm.DB, error) {
	return c.db, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.StudyBlock{},
		&models.EmailDelivery{},
	))
	return db
}

func pendingRecord(blockID string, scheduledFor time.Time) *models.EmailDelivery {
	return &models.EmailDelivery{
		BlockID:      blockID,
		UserID:       "user-1",
		ScheduledFor: scheduledFor,
		Status:       models.DeliveryPending,
		DedupeKey:    models.ReminderDedupeKey(blockID),
	}
}

func TestCreateReturnsAlreadyExistsOnDuplicateKey(t *testing.T) {
	s := NewReminderStore(testConn{newTestDB(t)})

	outcome, err := s.Create(pendingRecord("b1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)

	outcome, err = s.Create(pendingRecord("b1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, outcome)

	db, _ := s.conn.DB()
	var count int64
	require.NoError(t, db.Model(&models.EmailDelivery{}).Where("block_id = ?", "b1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindDueSelectsOnlyPendingInWindow(t *testing.T) {
	db := newTestDB(t)
	s := NewReminderStore(testConn{db})

	now := time.Now().Truncate(time.Second)

	inWindow := pendingRecord("b-in", now.Add(2*time.Minute))
	tooEarly := pendingRecord("b-early", now.Add(-time.Minute))
	tooLate := pendingRecord("b-late", now.Add(10*time.Minute))
	alreadySent := pendingRecord("b-sent", now.Add(2*time.Minute))
	alreadySent.Status = models.DeliverySent
	cancelled := pendingRecord("b-cancelled", now.Add(2*time.Minute))
	cancelled.Status = models.DeliveryCancelled

	for _, r := range []*models.EmailDelivery{inWindow, tooEarly, tooLate, alreadySent, cancelled} {
		require.NoError(t, db.Create(r).Error)
	}

	due, err := s.FindDue(now, now.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "b-in", due[0].BlockID)
}

func TestMarkSentLeavesTerminalRecordsAlone(t *testing.T) {
	db := newTestDB(t)
	s := NewReminderStore(testConn{db})

	record := pendingRecord("b1", time.Now().Add(time.Minute))
	record.Status = models.DeliveryCancelled
	require.NoError(t, db.Create(record).Error)

	require.NoError(t, s.MarkSent(record.ID, time.Now()))

	var got models.EmailDelivery
	require.NoError(t, db.First(&got, "id = ?", record.ID).Error)
	assert.Equal(t, models.DeliveryCancelled, got.Status)
	assert.Nil(t, got.SentAt)
}

func TestCancelPendingForBlock(t *testing.T) {
	db := newTestDB(t)
	s := NewReminderStore(testConn{db})

	pending := pendingRecord("b1", time.Now().Add(time.Hour))
	require.NoError(t, db.Create(pending).Error)

	sent := pendingRecord("b2", time.Now().Add(time.Hour))
	sent.Status = models.DeliverySent
	require.NoError(t, db.Create(sent).Error)

	require.NoError(t, s.CancelPendingForBlock("b1"))
	require.NoError(t, s.CancelPendingForBlock("b2"))

	var got models.EmailDelivery
	require.NoError(t, db.First(&got, "block_id = ?", "b1").Error)
	assert.Equal(t, models.DeliveryCancelled, got.Status)

	var gotSent models.EmailDelivery
	require.NoError(t, db.First(&gotSent, "block_id = ?", "b2").Error)
	assert.Equal(t, models.DeliverySent, gotSent.Status)
}

func TestPurgeTerminalRespectsCutoffAndStatus(t *testing.T) {
	db := newTestDB(t)
	s := NewReminderStore(testConn{db})

	now := time.Now()

	oldSent := pendingRecord("b-old-sent", now.Add(-8*24*time.Hour))
	oldSent.Status = models.DeliverySent
	recentSent := pendingRecord("b-recent-sent", now.Add(-6*24*time.Hour))
	recentSent.Status = models.DeliverySent
	oldFailed := pendingRecord("b-old-failed", now.Add(-8*24*time.Hour))
	oldFailed.Status = models.DeliveryFailed
	// Cancelled records are never purged, regardless of age
	oldCancelled := pendingRecord("b-old-cancelled", now.Add(-8*24*time.Hour))
	oldCancelled.Status = models.DeliveryCancelled
	oldPending := pendingRecord("b-old-pending", now.Add(-8*24*time.Hour))

	for _, r := range []*models.EmailDelivery{oldSent, recentSent, oldFailed, oldCancelled, oldPending} {
		require.NoError(t, db.Create(r).Error)
	}

	deleted, err := s.PurgeTerminal(now.Add(-7 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var remaining []models.EmailDelivery
	require.NoError(t, db.Find(&remaining).Error)
	blocks := make([]string, 0, len(remaining))
	for _, r := range remaining {
		blocks = append(blocks, r.BlockID)
	}
	assert.ElementsMatch(t, []string{"b-recent-sent", "b-old-cancelled", "b-old-pending"}, blocks)

	// Re-running finds nothing left to delete
	deleted, err = s.PurgeTerminal(now.Add(-7 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)
}
