package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account on the site. Exactly one account is expected to carry IsAdmin.
type User struct {
	ID                uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name              string     `json:"name" db:"name" gorm:"type:text;not null"`
	Email             string     `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_user_email"`
	PasswordHash      string     `json:"-" db:"password_hash" gorm:"type:text;not null"`
	IsAdmin           bool       `json:"is_admin" db:"is_admin" gorm:"not null;default:false"`
	ResetToken        *string    `json:"-" db:"reset_token" gorm:"type:text;uniqueIndex:idx_user_reset_token"`
	ResetTokenExpires *time.Time `json:"-" db:"reset_token_expires"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at" gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// ResetTokenValid reports whether token matches an unexpired reset token.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpires == nil {
		return false
	}
	return *u.ResetToken == token && now.Before(*u.ResetTokenExpires)
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
