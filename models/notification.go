package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification tells a content owner about engagement on their content.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Type      NotificationType `json:"type" db:"type" gorm:"type:text;not null"`
	Message   string           `json:"message" db:"message" gorm:"type:text;not null"`
	Read      bool             `json:"read" db:"is_read" gorm:"column:is_read;not null;default:false;index:idx_notification_is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at" gorm:"not null"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_notification_user_id"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
