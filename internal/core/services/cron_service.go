package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService schedules the daily reminder and monthly report jobs.
// Jobs are read-only consumers; a failing run is logged and retried on the
// next tick.
type CronService struct {
	cron    *cron.Cron
	reports *ReportService
}

// NewCronService creates a new cron service
func NewCronService(reports *ReportService) *CronService {
	return &CronService{
		cron:    cron.New(),
		reports: reports,
	}
}

// Start registers and starts the scheduled jobs:
// daily reminders at 18:00, monthly reports on the 1st at 09:00.
func (s *CronService) Start() {
	s.cron.AddFunc("0 18 * * *", func() {
		if _, err := s.reports.SendDailyReminders(context.Background()); err != nil {
			log.Printf("❌ Daily reminder job failed: %v", err)
		}
	})

	s.cron.AddFunc("0 9 1 * *", func() {
		if _, err := s.reports.SendMonthlyReports(context.Background()); err != nil {
			log.Printf("❌ Monthly report job failed: %v", err)
		}
	})

	s.cron.Start()
	log.Println("🚀 Cron service started (daily 18:00, monthly 1st 09:00)")
}

// Stop stops the scheduler; running jobs finish on their own
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Cron service stopped")
}
