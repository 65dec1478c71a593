package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"quiethours/internal/models"
	"quiethours/internal/store"
)

const (
	// ReminderLead is how far before a block's start its reminder fires
	ReminderLead = 10 * time.Minute
	// SweepLookahead is how far ahead of now a sweep scans for due reminders.
	// The sweep must run at an interval no longer than this window.
	SweepLookahead = 5 * time.Minute
	// RetentionWindow is the age after which sent/failed records are purged
	RetentionWindow = 7 * 24 * time.Hour
)

// SweepResult summarizes one dispatcher run
type SweepResult struct {
	Processed int       `json:"processed"`
	Timestamp time.Time `json:"timestamp"`
}

// ReminderService schedules, dispatches, cancels and purges reminder emails
type ReminderService struct {
	reminders   *store.ReminderStore
	blocks      *store.BlockStore
	users       *store.UserStore
	mailer      Mailer
	displayZone *time.Location
}

// NewReminderService wires the reminder subsystem against a shared connection
// and a mail transport
func NewReminderService(conn store.Conn, mailer Mailer) *ReminderService {
	return &ReminderService{
		reminders:   store.NewReminderStore(conn),
		blocks:      store.NewBlockStore(conn),
		users:       store.NewUserStore(conn),
		mailer:      mailer,
		displayZone: loadDisplayZone(),
	}
}

// loadDisplayZone resolves the reference timezone used to format block times
// in reminder emails. All recipients see times in this one zone.
func loadDisplayZone() *time.Location {
	name := os.Getenv("REMINDER_TIME_ZONE")
	if name == "" {
		name = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: invalid REMINDER_TIME_ZONE %q, falling back to UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// Schedule records a pending reminder for a block, to fire ReminderLead
// before blockStart. Scheduling too close to (or after) the start is a
// deliberate no-op. A reminder that already exists for the block is treated
// as success. Any returned error is a store failure; callers creating blocks
// log it and carry on, since block creation must never fail on reminder
// bookkeeping.
func (s *ReminderService) Schedule(blockID, userID string, blockStart time.Time, recipientEmail string) error {
	reminderTime := blockStart.Add(-ReminderLead)

	if !reminderTime.After(time.Now()) {
		log.Printf("Skipping reminder for block %s - reminder time is in the past", blockID)
		return nil
	}

	record := &models.EmailDelivery{
		BlockID:        blockID,
		UserID:         userID,
		RecipientEmail: recipientEmail,
		ScheduledFor:   reminderTime,
		Status:         models.DeliveryPending,
		DedupeKey:      models.ReminderDedupeKey(blockID),
	}

	outcome, err := s.reminders.Create(record)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder for block %s: %w", blockID, err)
	}
	if outcome == store.AlreadyExists {
		log.Printf("Reminder already scheduled for block %s", blockID)
		return nil
	}

	log.Printf("Scheduled reminder for block %s at %s", blockID, reminderTime.Format(time.RFC3339))
	return nil
}

// CancelForBlock cancels a block's still-pending reminder, if any. Called
// when a block is deleted; sent and failed records stay as they are.
func (s *ReminderService) CancelForBlock(blockID string) error {
	return s.reminders.CancelPendingForBlock(blockID)
}

// RunSweep finds pending reminders due within the lookahead window and
// dispatches them. Each record is processed independently: resolution
// problems leave it pending for the next sweep, a transport failure marks
// it failed, and neither stops the rest of the batch. Only the inability to
// query the store at all aborts the sweep.
func (s *ReminderService) RunSweep(now time.Time) (SweepResult, error) {
	due, err := s.reminders.FindDue(now, now.Add(SweepLookahead))
	if err != nil {
		return SweepResult{}, err
	}

	log.Printf("Found %d reminders to send", len(due))

	for _, record := range due {
		s.dispatch(record)
	}

	return SweepResult{Processed: len(due), Timestamp: now}, nil
}

// dispatch sends one reminder and transitions its record
func (s *ReminderService) dispatch(record models.EmailDelivery) {
	// Prefer the email captured at scheduling time, fall back to a lookup
	recipient := record.RecipientEmail
	if recipient == "" {
		user, err := s.users.GetByID(record.UserID)
		if err != nil {
			log.Printf("Error: no recipient resolvable for reminder %s: %v", record.ID, err)
			return
		}
		recipient = user.Email
	}

	block, err := s.blocks.GetByID(record.BlockID)
	if err != nil {
		log.Printf("Error: block not found for reminder %s: %v", record.ID, err)
		return
	}

	startTime := block.StartAt.In(s.displayZone).Format("Mon Jan 2, 3:04 PM")
	endTime := block.EndAt.In(s.displayZone).Format("Mon Jan 2, 3:04 PM")
	subject, plainContent, htmlContent := BlockReminderContent(block.Title, startTime, endTime)

	if err := s.mailer.Send(recipient, subject, plainContent, htmlContent); err != nil {
		log.Printf("Error: failed to send reminder %s: %v", record.ID, err)
		if err := s.reminders.MarkFailed(record.ID); err != nil {
			log.Printf("Error: failed to mark reminder %s failed: %v", record.ID, err)
		}
		return
	}

	if err := s.reminders.MarkSent(record.ID, time.Now()); err != nil {
		log.Printf("Error: failed to mark reminder %s sent: %v", record.ID, err)
		return
	}
	log.Printf("Sent reminder for block %s to %s", block.ID, recipient)
}

// Purge deletes sent and failed records whose scheduled time is older than
// the retention window. Safe to run repeatedly.
func (s *ReminderService) Purge(now time.Time) (int64, error) {
	deleted, err := s.reminders.PurgeTerminal(now.Add(-RetentionWindow))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Cleaned up %d old reminders", deleted)
	}
	return deleted, nil
}
