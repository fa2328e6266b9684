package repository

import (
	"context"

	"strive/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID uint) error
	MarkAllRead(ctx context.Context, recipientID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
