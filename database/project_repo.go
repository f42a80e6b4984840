package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns all projects, newest first
func (r *ProjectRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// FindRecentPublished returns the most recently created published projects
func (r *ProjectRepo) FindRecentPublished(ctx context.Context, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// FindPopularPublished returns the most liked published projects
func (r *ProjectRepo) FindPopularPublished(ctx context.Context, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Order("likes_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID together with its owner
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Preload("User").First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("User").Create(project).Error
}

// Update writes the editable fields of an existing project
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).
		Model(project).
		Select("title", "description", "image_path", "tags", "status", "updated_at").
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a project from the database by id; comments and likes cascade
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementLikes adds one to the denormalized like counter
func (r *ProjectRepo) IncrementLikes(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error
}

// DecrementLikes subtracts one from the like counter without going below zero
func (r *ProjectRepo) DecrementLikes(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
}

// LikesCount reads the current like counter
func (r *ProjectRepo) LikesCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Select("likes_count").
		Scan(&count).Error
	return count, err
}

// RecountLikes rewrites every drifted counter from the likes table and
// returns how many projects were corrected
func (r *ProjectRepo) RecountLikes(ctx context.Context) (int64, error) {
	const likesPerProject = "(SELECT COUNT(*) FROM likes WHERE likes.project_id = projects.id)"
	result := r.db.WithContext(ctx).Exec(
		"UPDATE projects SET likes_count = " + likesPerProject + " WHERE likes_count <> " + likesPerProject,
	)
	return result.RowsAffected, result.Error
}

// Count returns the number of projects
func (r *ProjectRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}
