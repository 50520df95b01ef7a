package main

import (
	"context"
	"log"
	"time"
)

// scheduledJob is an hour of day, an optional weekday restriction (nil
// means daily), and the function to run.
type scheduledJob struct {
	name      string
	hour      int
	dayOfWeek *time.Weekday
	fn        func(ctx context.Context) error
}

// checkScheduledJobs runs each job whose hour (and, if set, weekday) matches
// now, at most once per calendar day.
func checkScheduledJobs(ctx context.Context, jobs []scheduledJob, lastRun map[string]string) {
	now := time.Now().UTC()
	utcHour := now.Hour()
	utcDay := now.Weekday()
	todayKey := now.Format("2006-01-02")

	for _, job := range jobs {
		if utcHour != job.hour {
			continue
		}
		if job.dayOfWeek != nil && utcDay != *job.dayOfWeek {
			continue
		}
		runKey := todayKey + ":" + job.name
		if lastRun[job.name] == runKey {
			continue
		}
		lastRun[job.name] = runKey

		log.Printf("[scheduler] Starting %s...", job.name)
		if err := job.fn(ctx); err != nil {
			log.Printf("[scheduler] %s failed: %v", job.name, err)
		} else {
			log.Printf("[scheduler] %s completed successfully", job.name)
		}
	}
}
