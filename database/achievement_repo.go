package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type AchievementRepo struct {
	db *gorm.DB
}

func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db}
}

// FindByUser returns a user's achievements, most recent date first
func (r *AchievementRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_on DESC").
		Find(&achievements).Error
	return achievements, err
}

// FindByID returns an achievement by its ID
func (r *AchievementRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := r.db.WithContext(ctx).First(&achievement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

// Add inserts a new achievement into the database
func (r *AchievementRepo) Add(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Omit("User").Create(achievement).Error
}

// Update writes the editable fields of an existing achievement
func (r *AchievementRepo) Update(ctx context.Context, achievement *models.Achievement) error {
	result := r.db.WithContext(ctx).
		Model(achievement).
		Select("title", "description", "achieved_on", "image_path").
		Updates(achievement)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an achievement from the database by id
func (r *AchievementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Achievement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
