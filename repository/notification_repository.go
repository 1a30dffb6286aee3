package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// UnreadPreviewLimit is how many unread notifications a user listing leads with
const UnreadPreviewLimit = 5

// NotificationRepository persists notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindForUser(ctx context.Context, id, userID uint) (*model.Notification, error)
	FindByID(ctx context.Context, id uint) (*model.Notification, error)
	ListUnread(ctx context.Context, userID uint, limit int) ([]model.Notification, error)
	ListRead(ctx context.Context, userID uint) ([]model.Notification, error)
	ListAdmin(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, ids []uint, userID uint) (int64, error)
	MarkReadAdmin(ctx context.Context, ids []uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns the postgres implementation
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Omit("User").Create(n).Error
}

func (r *notificationRepository) FindForUser(ctx context.Context, id, userID uint) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		return nil, notFound(err, "notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err, "notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID uint, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *notificationRepository) ListRead(ctx context.Context, userID uint) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, true).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *notificationRepository) ListAdmin(ctx context.Context) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Order("is_read_admin ASC").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, ids []uint, userID uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) MarkReadAdmin(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id IN ?", ids).
		Update("is_read_admin", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("notification", id)
	}
	return nil
}
