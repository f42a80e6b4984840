package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like records that a user likes a project. A (user, project) pair appears at most once.
type Like struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project;index:idx_like_project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`

	User    *User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Project *Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
