package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Database struct {
	db                 *gorm.DB
	userRepo           *UserRepo
	projectRepo        *ProjectRepo
	achievementRepo    *AchievementRepo
	commentRepo        *CommentRepo
	likeRepo           *LikeRepo
	notificationRepo   *NotificationRepo
	contactMessageRepo *ContactMessageRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		userRepo:           NewUserRepo(db),
		projectRepo:        NewProjectRepo(db),
		achievementRepo:    NewAchievementRepo(db),
		commentRepo:        NewCommentRepo(db),
		likeRepo:           NewLikeRepo(db),
		notificationRepo:   NewNotificationRepo(db),
		contactMessageRepo: NewContactMessageRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) AchievementRepo() *AchievementRepo {
	return d.achievementRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) NotificationRepo() *NotificationRepo {
	return d.notificationRepo
}

func (d Database) ContactMessageRepo() *ContactMessageRepo {
	return d.contactMessageRepo
}

// GetDB returns the underlying database connection
func (d Database) GetDB() *gorm.DB {
	return d.db
}

// Transaction runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks that the database is reachable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
