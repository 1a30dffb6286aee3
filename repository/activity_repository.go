package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"gorm.io/gorm"
)

// ActivityRepository records account events
type ActivityRepository interface {
	Record(ctx context.Context, a *model.UserActivity) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns the postgres implementation
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Record(ctx context.Context, a *model.UserActivity) error {
	return r.db.WithContext(ctx).Omit("User").Create(a).Error
}
