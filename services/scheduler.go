// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/Pratyunmis/robosaga26/models"

	"github.com/go-co-op/gocron/v2"
)

// StartAnalyticsScheduler refreshes the dashboard analytics cache on a fixed
// interval so admin page loads never pay for the aggregate scans.
func (s *AdminService) StartAnalyticsScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(analyticsTTL),
		gocron.NewTask(func() {
			if _, err := s.RefreshAnalytics(); err != nil {
				log.Printf("[Scheduler] analytics refresh failed: %v", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)

	// Every hour: prune join requests resolved more than 30 days ago.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().AddDate(0, 0, -30)
			result := s.DB.Exec(
				"DELETE FROM join_requests WHERE status != ? AND created_at < ?",
				models.JoinRequestPending, cutoff,
			)
			if result.Error != nil {
				log.Printf("[Scheduler] join request cleanup failed: %v", result.Error)
			} else if result.RowsAffected > 0 {
				log.Printf("[Scheduler] pruned %d resolved join requests", result.RowsAffected)
			}
		}),
	)
}
