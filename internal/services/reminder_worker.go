package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const (
	// sweepInterval must stay at or below SweepLookahead so no reminder's
	// due window is skipped between runs
	sweepInterval = 2 * time.Minute
	purgeInterval = 24 * time.Hour
)

// StartReminderWorker runs the dispatcher sweep and the retention purge on
// their own periodic jobs. Returns the scheduler so the caller can shut it
// down. An external cron hitting the /cron/run endpoint can drive the same
// operations instead; both triggers are safe to combine.
func StartReminderWorker(reminders *ReminderService) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(func() {
			result, err := reminders.RunSweep(time.Now())
			if err != nil {
				log.Printf("Error: reminder sweep failed: %v", err)
				return
			}
			if result.Processed > 0 {
				log.Printf("Reminder sweep processed %d records at %s",
					result.Processed, result.Timestamp.Format(time.RFC3339))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(purgeInterval),
		gocron.NewTask(func() {
			if _, err := reminders.Purge(time.Now()); err != nil {
				log.Printf("Error: reminder purge failed: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
