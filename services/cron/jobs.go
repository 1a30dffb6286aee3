package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
)

// GenerateDailyStatistics recomputes the snapshots for today
func (m *CronManager) GenerateDailyStatistics(ctx context.Context) (string, error) {
	if err := m.stats.GenerateDailyStatistics(ctx); err != nil {
		return "", err
	}
	return "statistics snapshots generated", nil
}

// CleanupExpiredTokens removes expired blacklist entries together with expired or revoked refresh tokens
func (m *CronManager) CleanupExpiredTokens(ctx context.Context) (string, error) {
	removed, err := m.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("removed %d tokens", removed), nil
}

// CleanupOldData trims cron job logs and user activity past their retention window
func (m *CronManager) CleanupOldData(ctx context.Context) (string, error) {
	now := time.Now()

	res := m.db.WithContext(ctx).
		Where("started_at < ?", now.Add(-m.retention.CronLogs)).
		Delete(&model.CronJobLog{})
	if res.Error != nil {
		return "", fmt.Errorf("clean cron logs: %w", res.Error)
	}
	logs := res.RowsAffected
	log.Printf("[CRON] Cleaned %d old cron logs", logs)

	res = m.db.WithContext(ctx).
		Where("created_at < ?", now.Add(-m.retention.Activities)).
		Delete(&model.UserActivity{})
	if res.Error != nil {
		return "", fmt.Errorf("clean user activities: %w", res.Error)
	}
	log.Printf("[CRON] Cleaned %d old user activities", res.RowsAffected)

	return fmt.Sprintf("cleaned %d records", logs+res.RowsAffected), nil
}
