package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AchievementDateLayout is the only accepted format for achievement dates.
const AchievementDateLayout = "2006-01-02"

// Achievement is a dated milestone shown on the about page.
type Achievement struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string    `json:"title" db:"title" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null"`
	Date        time.Time `json:"date" db:"achieved_on" gorm:"column:achieved_on;type:date;not null;index:idx_achievement_achieved_on"`
	ImagePath   *string   `json:"image_path,omitempty" db:"image_path" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"not null"`
	UserID      uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_achievement_user_id"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
