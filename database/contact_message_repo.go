package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type ContactMessageRepo struct {
	db *gorm.DB
}

func NewContactMessageRepo(db *gorm.DB) *ContactMessageRepo {
	return &ContactMessageRepo{db}
}

// FindAll returns all contact messages, newest first
func (r *ContactMessageRepo) FindAll(ctx context.Context) ([]*models.ContactMessage, error) {
	var messages []*models.ContactMessage
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&messages).Error
	return messages, err
}

// Add inserts a new contact message into the database
func (r *ContactMessageRepo) Add(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// MarkRead flags a message as read
func (r *ContactMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).UpdateColumn("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUnread returns the number of unread messages
func (r *ContactMessageRepo) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}
