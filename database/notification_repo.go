package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db}
}

// FindByUser returns a user's notifications, newest first
func (r *NotificationRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// Add inserts a new notification into the database
func (r *NotificationRepo) Add(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Omit("User").Create(notification).Error
}

// MarkRead flags the given notifications of a user as read. Rows outside
// ids stay unread even if they arrived after the caller listed.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ? AND id IN ?", userID, false, ids).
		UpdateColumn("is_read", true)
	return result.RowsAffected, result.Error
}

// CountUnread returns the number of unread notifications across all users
func (r *NotificationRepo) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}
