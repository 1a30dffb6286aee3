package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	JobDailyStatistics = "daily_statistics"
	JobTokenCleanup    = "token_cleanup"
	JobCleanupOldData  = "cleanup_old_data"
)

// StatisticsGenerator rebuilds the statistics snapshots for the current day
type StatisticsGenerator interface {
	GenerateDailyStatistics(ctx context.Context) error
}

// TokenCleaner purges blacklist entries and refresh tokens that can no longer be used
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	runs      RunRecorder
	stats     StatisticsGenerator
	tokens    TokenCleaner
	retention Retention
}

// Retention controls how long housekeeping rows are kept
type Retention struct {
	CronLogs   time.Duration
	Activities time.Duration
}

// DefaultRetention keeps 90 days of job logs and 180 days of user activity
var DefaultRetention = Retention{
	CronLogs:   90 * 24 * time.Hour,
	Activities: 180 * 24 * time.Hour,
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, stats StatisticsGenerator, tokens TokenCleaner) *CronManager {
	return &CronManager{
		cron:      cron.New(cron.WithSeconds()),
		db:        db,
		runs:      NewGormRunRecorder(db),
		stats:     stats,
		tokens:    tokens,
		retention: DefaultRetention,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs to return
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

type job struct {
	name     string
	schedule string
	timeout  time.Duration
	run      func(ctx context.Context) (string, error)
}

func (m *CronManager) jobs() []job {
	return []job{
		// Midnight UTC: rebuild today's statistics snapshots
		{JobDailyStatistics, "0 0 0 * * *", 10 * time.Minute, m.GenerateDailyStatistics},
		// 3 AM: drop expired tokens
		{JobTokenCleanup, "0 0 3 * * *", 5 * time.Minute, m.CleanupExpiredTokens},
		// 3:30 AM: trim job logs and activity history
		{JobCleanupOldData, "0 30 3 * * *", 10 * time.Minute, m.CleanupOldData},
	}
}

func (m *CronManager) registerJobs() error {
	for _, j := range m.jobs() {
		j := j
		if _, err := m.cron.AddFunc(j.schedule, func() { m.Run(j.name, j.timeout, j.run) }); err != nil {
			return err
		}
	}
	log.Println("All cron jobs registered successfully")
	return nil
}

// Run executes fn once and records the outcome in cron_job_logs
func (m *CronManager) Run(name string, timeout time.Duration, fn func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("[CRON] Starting job: %s at %s", name, time.Now().Format(time.RFC3339))
	entry, err := m.runs.Start(ctx, name)
	if err != nil {
		log.Printf("[CRON] Failed to record start of %s: %v", name, err)
	}

	message, runErr := fn(ctx)
	if runErr != nil {
		log.Printf("[CRON] Error in job: %s - %v", name, runErr)
	} else {
		log.Printf("[CRON] Completed job: %s - %s", name, message)
	}

	if entry == nil {
		return
	}
	if err := m.runs.Finish(ctx, entry, message, runErr); err != nil {
		log.Printf("[CRON] Failed to record result of %s: %v", name, err)
	}
}
