package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/database/databasetest"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

func seedUser(t *testing.T, db database.Database, email string, admin bool) *models.User {
	t.Helper()
	user := &models.User{Name: "User " + email, Email: email, PasswordHash: "hash", IsAdmin: admin}
	require.NoError(t, db.UserRepo().Add(context.Background(), user))
	return user
}

func seedProject(t *testing.T, db database.Database, owner *models.User, title string, status models.ProjectStatus, created time.Time) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:       title,
		Description: "About " + title,
		Status:      status,
		UserID:      owner.ID,
		CreatedAt:   created,
	}
	require.NoError(t, db.ProjectRepo().Add(context.Background(), project))
	return project
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := seedUser(t, db, "admin@example.com", true)
	seedUser(t, db, "visitor@example.com", false)

	t.Run("find by email", func(t *testing.T) {
		found, err := db.UserRepo().FindByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, found.ID)

		_, err = db.UserRepo().FindByEmail(ctx, "nobody@example.com")
		assert.True(t, database.IsNotFound(err))
	})

	t.Run("email exists", func(t *testing.T) {
		exists, err := db.UserRepo().EmailExists(ctx, "visitor@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := db.UserRepo().Add(ctx, &models.User{Name: "Dup", Email: "admin@example.com", PasswordHash: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, errs.NewDatabaseError("create", "user", err), errs.ErrAlreadyExists)
	})

	t.Run("find admin", func(t *testing.T) {
		found, err := db.UserRepo().FindAdmin(ctx)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, found.ID)
	})

	t.Run("reset token lifecycle", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		require.NoError(t, db.UserRepo().SetResetToken(ctx, admin.ID, "tok", expires))

		found, err := db.UserRepo().FindByResetToken(ctx, "tok")
		require.NoError(t, err)
		assert.True(t, found.ResetTokenValid("tok", time.Now()))

		require.NoError(t, db.UserRepo().UpdatePassword(ctx, admin.ID, "new-hash"))
		_, err = db.UserRepo().FindByResetToken(ctx, "tok")
		assert.True(t, database.IsNotFound(err))

		found, err = db.UserRepo().FindByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", found.PasswordHash)
		assert.Nil(t, found.ResetToken)
	})

	t.Run("update missing user", func(t *testing.T) {
		err := db.UserRepo().SetAdmin(ctx, uuid.New(), true)
		assert.True(t, database.IsNotFound(err))
	})
}

func TestProjectRepoListings(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	owner := seedUser(t, db, "admin@example.com", true)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	oldest := seedProject(t, db, owner, "Oldest", models.StatusPublished, base)
	middle := seedProject(t, db, owner, "Middle", models.StatusPublished, base.Add(time.Hour))
	seedProject(t, db, owner, "Draft", models.StatusDraft, base.Add(2*time.Hour))

	require.NoError(t, db.ProjectRepo().IncrementLikes(ctx, oldest.ID))

	recent, err := db.ProjectRepo().FindRecentPublished(ctx, 6)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, middle.ID, recent[0].ID)

	popular, err := db.ProjectRepo().FindPopularPublished(ctx, 6)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, oldest.ID, popular[0].ID)

	all, err := db.ProjectRepo().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := db.ProjectRepo().FindByID(ctx, oldest.ID)
	require.NoError(t, err)
	require.NotNil(t, found.User)
	assert.Equal(t, owner.Email, found.User.Email)
}

func TestProjectRepoLikeCounter(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	owner := seedUser(t, db, "admin@example.com", true)
	project := seedProject(t, db, owner, "Counter", models.StatusPublished, time.Now())

	require.NoError(t, db.ProjectRepo().DecrementLikes(ctx, project.ID))
	count, err := db.ProjectRepo().LikesCount(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "counter never goes below zero")

	require.NoError(t, db.ProjectRepo().IncrementLikes(ctx, project.ID))
	require.NoError(t, db.ProjectRepo().IncrementLikes(ctx, project.ID))
	count, err = db.ProjectRepo().LikesCount(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	fixed, err := db.ProjectRepo().RecountLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed)

	count, err = db.ProjectRepo().LikesCount(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestProjectRepoUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	owner := seedUser(t, db, "admin@example.com", true)
	visitor := seedUser(t, db, "visitor@example.com", false)
	project := seedProject(t, db, owner, "Before", models.StatusDraft, time.Now())

	project.Title = "After"
	project.Status = models.StatusPublished
	require.NoError(t, db.ProjectRepo().Update(ctx, project))

	found, err := db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", found.Title)
	assert.True(t, found.IsPublished())

	require.NoError(t, db.LikeRepo().Add(ctx, &models.Like{UserID: visitor.ID, ProjectID: project.ID}))
	require.NoError(t, db.CommentRepo().Add(ctx, &models.Comment{UserID: visitor.ID, ProjectID: project.ID, Content: "Nice"}))

	require.NoError(t, db.ProjectRepo().Delete(ctx, project.ID))

	likes, err := db.LikeRepo().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, likes)
	comments, err := db.CommentRepo().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, comments)

	assert.True(t, database.IsNotFound(db.ProjectRepo().Delete(ctx, project.ID)))
}

func TestLikeRepoUniquePair(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	owner := seedUser(t, db, "admin@example.com", true)
	project := seedProject(t, db, owner, "Liked", models.StatusPublished, time.Now())

	require.NoError(t, db.LikeRepo().Add(ctx, &models.Like{UserID: owner.ID, ProjectID: project.ID}))
	err := db.LikeRepo().Add(ctx, &models.Like{UserID: owner.ID, ProjectID: project.ID})
	require.Error(t, err)
	assert.ErrorIs(t, errs.NewDatabaseError("create", "like", err), errs.ErrAlreadyExists)

	like, err := db.LikeRepo().Find(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	require.NotNil(t, like)

	none, err := db.LikeRepo().Find(ctx, uuid.New(), project.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	count, err := db.LikeRepo().CountByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.LikeRepo().Delete(ctx, like.ID))
	assert.True(t, database.IsNotFound(db.LikeRepo().Delete(ctx, like.ID)), "a second delete removes nothing")
}

func TestNotificationRepoMarkRead(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := seedUser(t, db, "admin@example.com", true)
	other := seedUser(t, db, "other@example.com", false)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.NotificationRepo().Add(ctx, &models.Notification{
			Type: models.NotificationLike, Message: "liked", UserID: admin.ID,
		}))
	}
	foreign := &models.Notification{Type: models.NotificationComment, Message: "commented", UserID: other.ID}
	require.NoError(t, db.NotificationRepo().Add(ctx, foreign))

	unread, err := db.NotificationRepo().CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	listed, err := db.NotificationRepo().FindByUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	ids := []uuid.UUID{listed[0].ID, listed[1].ID, foreign.ID}

	late := &models.Notification{Type: models.NotificationLike, Message: "late", UserID: admin.ID}
	require.NoError(t, db.NotificationRepo().Add(ctx, late))

	marked, err := db.NotificationRepo().MarkRead(ctx, admin.ID, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked, "only the admin's listed rows")

	unread, err = db.NotificationRepo().CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread, "the late row and the other user's row stay unread")

	mine, err := db.NotificationRepo().FindByUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for _, n := range mine {
		assert.Equal(t, n.ID != late.ID, n.Read, n.Message)
	}

	marked, err = db.NotificationRepo().MarkRead(ctx, admin.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestAchievementRepo(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	owner := seedUser(t, db, "admin@example.com", true)

	first := &models.Achievement{Title: "First", Description: "d", Date: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), UserID: owner.ID}
	latest := &models.Achievement{Title: "Latest", Description: "d", Date: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), UserID: owner.ID}
	require.NoError(t, db.AchievementRepo().Add(ctx, first))
	require.NoError(t, db.AchievementRepo().Add(ctx, latest))

	list, err := db.AchievementRepo().FindByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, latest.ID, list[0].ID)

	first.Title = "First, renamed"
	require.NoError(t, db.AchievementRepo().Update(ctx, first))
	found, err := db.AchievementRepo().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First, renamed", found.Title)

	require.NoError(t, db.AchievementRepo().Delete(ctx, first.ID))
	_, err = db.AchievementRepo().FindByID(ctx, first.ID)
	assert.True(t, database.IsNotFound(err))
}

func TestContactMessageRepo(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)

	msg := &models.ContactMessage{Name: "Ana", Email: "ana@example.com", Message: "Hello"}
	require.NoError(t, db.ContactMessageRepo().Add(ctx, msg))

	unread, err := db.ContactMessageRepo().CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, db.ContactMessageRepo().MarkRead(ctx, msg.ID))
	unread, err = db.ContactMessageRepo().CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)

	assert.True(t, database.IsNotFound(db.ContactMessageRepo().MarkRead(ctx, uuid.New())))
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)

	err := db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.UserRepo().Add(ctx, &models.User{Name: "Temp", Email: "temp@example.com", PasswordHash: "x"}); err != nil {
			return err
		}
		return errs.NewInternalError("abort")
	})
	require.Error(t, err)

	exists, err := db.UserRepo().EmailExists(ctx, "temp@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
