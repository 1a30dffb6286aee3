package cron

import (
	"context"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"gorm.io/gorm"
)

// RunRecorder persists one row per job execution
type RunRecorder interface {
	Start(ctx context.Context, name string) (*model.CronJobLog, error)
	Finish(ctx context.Context, entry *model.CronJobLog, message string, runErr error) error
}

type gormRunRecorder struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRunRecorder records runs in the cron_job_logs table
func NewGormRunRecorder(db *gorm.DB) RunRecorder {
	return &gormRunRecorder{db: db, now: time.Now}
}

func (r *gormRunRecorder) Start(ctx context.Context, name string) (*model.CronJobLog, error) {
	entry := &model.CronJobLog{
		JobName:   name,
		Status:    model.CronStatusStarted,
		StartedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *gormRunRecorder) Finish(ctx context.Context, entry *model.CronJobLog, message string, runErr error) error {
	finish(entry, r.now(), message, runErr)
	return r.db.WithContext(ctx).
		Model(&model.CronJobLog{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"status":       entry.Status,
			"completed_at": entry.CompletedAt,
			"duration_ms":  entry.DurationMS,
			"message":      entry.Message,
			"error_msg":    entry.ErrorMsg,
		}).Error
}

// finish stamps the outcome of a run onto its log entry
func finish(entry *model.CronJobLog, at time.Time, message string, runErr error) {
	entry.CompletedAt = &at
	entry.DurationMS = at.Sub(entry.StartedAt).Milliseconds()
	entry.Message = message
	if runErr != nil {
		entry.Status = model.CronStatusFailed
		entry.ErrorMsg = runErr.Error()
		return
	}
	entry.Status = model.CronStatusCompleted
}
