package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus controls who can see a project.
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusPublished ProjectStatus = "published"
)

// Project represents a portfolio entry. LikesCount mirrors the number of Like rows.
type Project struct {
	ID          uuid.UUID     `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string        `json:"title" db:"title" gorm:"type:text;not null"`
	Description string        `json:"description" db:"description" gorm:"type:text;not null"`
	ImagePath   *string       `json:"image_path,omitempty" db:"image_path" gorm:"type:text"`
	Tags        string        `json:"tags" db:"tags" gorm:"type:text;not null;default:''"`
	Status      ProjectStatus `json:"status" db:"status" gorm:"type:text;not null;default:'draft';index:idx_project_status"`
	LikesCount  int           `json:"likes_count" db:"likes_count" gorm:"not null;default:0"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at" gorm:"not null"`
	UserID      uuid.UUID     `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_project_user_id"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

// IsPublished reports whether the project is visible to visitors.
func (p *Project) IsPublished() bool {
	return p.Status == StatusPublished
}

// TagList splits the comma-separated tag string, dropping blanks.
func (p *Project) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(p.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
