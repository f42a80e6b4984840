package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user registered with email
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken returns the user holding token, expired or not
func (r *UserRepo) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAdmin returns the first admin account
func (r *UserRepo) FindAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("is_admin = ?", true).Order("created_at").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether an account already uses email
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Add inserts a new user into the database
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SetResetToken stores a password reset token and its expiry
func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"reset_token":         token,
		"reset_token_expires": expires,
	})
}

// UpdatePassword replaces the password hash and clears any reset token
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, id, map[string]any{
		"password_hash":       passwordHash,
		"reset_token":         nil,
		"reset_token_expires": nil,
	})
}

// ClearResetToken drops the reset token and its expiry
func (r *UserRepo) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]any{
		"reset_token":         nil,
		"reset_token_expires": nil,
	})
}

// SetAdmin grants or revokes admin rights
func (r *UserRepo) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	return r.updateColumns(ctx, id, map[string]any{"is_admin": isAdmin})
}

func (r *UserRepo) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err means the queried row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
