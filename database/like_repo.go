package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Find returns the like of userID on projectID, or nil when there is none
func (r *LikeRepo) Find(ctx context.Context, userID, projectID uuid.UUID) (*models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Limit(1).
		Find(&likes).Error
	if err != nil || len(likes) == 0 {
		return nil, err
	}
	return &likes[0], nil
}

// Add inserts a new like into the database
func (r *LikeRepo) Add(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Omit("User", "Project").Create(like).Error
}

// Delete removes a like by id. It returns gorm.ErrRecordNotFound when no row
// was removed, e.g. a concurrent unlike got there first.
func (r *LikeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Like{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByProject returns the number of like rows for a project
func (r *LikeRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// Count returns the number of likes
func (r *LikeRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Count(&count).Error
	return count, err
}
