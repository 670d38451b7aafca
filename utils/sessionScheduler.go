package utils

import (
	"fmt"
	"log"
	"quizbank/config"
	"quizbank/database"
	"quizbank/models"
	"time"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[SESSION-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// sweepStaleSessions marks sessions that have been sitting incomplete past
// the configured age as ABANDONED. Only the status changes; the derived
// score/progress fields are never touched outside an answer write.
func sweepStaleSessions() {
	db := database.Database.Db
	cutoff := now.BeginningOfDay().AddDate(0, 0, -config.AppConfig.SessionMaxAgeDay)

	result := db.Model(&models.UserSession{}).
		Where("status = ? AND started_at < ?", models.SessionActive, cutoff).
		Update("status", models.SessionAbandoned)

	if result.Error != nil {
		logScheduler("Error sweeping stale sessions: " + result.Error.Error())
		return
	}
	if result.RowsAffected > 0 {
		logScheduler(fmt.Sprintf("Marked %d stale sessions abandoned", result.RowsAffected))
	}
}

// StartSessionScheduler starts the daily stale-session sweep
func StartSessionScheduler() {
	c := cron.New()

	_, err := c.AddFunc(config.AppConfig.SessionSweepSpec, sweepStaleSessions)
	if err != nil {
		log.Fatalf("Failed to schedule session sweep: %v", err)
	}

	c.Start()
	logScheduler("Session scheduler started")
}
