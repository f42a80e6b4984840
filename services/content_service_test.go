package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/database/databasetest"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := addUser(t, db, "Owner", "owner@example.com", true)
	visitor := addUser(t, db, "Bea", "bea@example.com", false)
	dir := t.TempDir()
	content := NewContentService(db, NewLocalStorage(dir), WithClock(newFakeClock().Now))

	t.Run("requires admin", func(t *testing.T) {
		_, err := content.CreateProject(ctx, principalOf(visitor), ProjectForm{Title: "T", Description: "D"})
		assert.True(t, errs.IsAdminRequiredError(err))

		_, err = content.CreateProject(ctx, nil, ProjectForm{Title: "T", Description: "D"})
		assert.True(t, errs.IsAdminRequiredError(err))
	})

	t.Run("defaults to draft", func(t *testing.T) {
		project, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{Title: " Parser ", Description: "LL(1)", Tags: "go, parsing"})
		require.NoError(t, err)
		assert.Equal(t, "Parser", project.Title)
		assert.Equal(t, models.StatusDraft, project.Status)
		assert.Equal(t, []string{"go", "parsing"}, project.TagList())
		assert.Nil(t, project.ImagePath)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{Title: "T", Description: "D", Status: "archived"})
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Must be one of: draft, published.", apiErr.Fields["status"])
	})

	t.Run("rejects non image upload", func(t *testing.T) {
		_, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{
			Title: "T", Description: "D",
			Image: &Upload{Filename: "notes.gif", Body: strings.NewReader("GIF89a")},
		})
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Fields, "image")
	})

	t.Run("stores image", func(t *testing.T) {
		project, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{
			Title: "Shots", Description: "D", Status: "published",
			Image: &Upload{Filename: "My Shot.PNG", Body: strings.NewReader("png-bytes")},
		})
		require.NoError(t, err)
		require.NotNil(t, project.ImagePath)
		assert.Equal(t, "uploads/20240102_030405_My_Shot.PNG", *project.ImagePath)

		data, err := os.ReadFile(filepath.Join(dir, "20240102_030405_My_Shot.PNG"))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})
}

func TestUpdateProjectKeepsImageWithoutUpload(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := addUser(t, db, "Owner", "owner@example.com", true)
	content := NewContentService(db, NewLocalStorage(t.TempDir()))

	created, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{
		Title: "Before", Description: "D",
		Image: &Upload{Filename: "cover.jpg", Body: strings.NewReader("jpg")},
	})
	require.NoError(t, err)

	updated, err := content.UpdateProject(ctx, principalOf(admin), created.ID, ProjectForm{Title: "After", Description: "D2", Status: "published"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.True(t, updated.IsPublished())
	require.NotNil(t, updated.ImagePath)
	assert.Equal(t, *created.ImagePath, *updated.ImagePath)

	_, err = content.UpdateProject(ctx, principalOf(admin), uuid.New(), ProjectForm{Title: "X", Description: "Y"})
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, content.DeleteProject(ctx, principalOf(admin), created.ID))
	assert.True(t, errs.IsNotFound(content.DeleteProject(ctx, principalOf(admin), created.ID)))
}

func TestAchievements(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := addUser(t, db, "Owner", "owner@example.com", true)
	content := NewContentService(db, NewLocalStorage(t.TempDir()))

	for _, bad := range []string{"15/01/2024", "2024-13-01", "yesterday"} {
		_, err := content.CreateAchievement(ctx, principalOf(admin), AchievementForm{Title: "T", Description: "D", Date: bad})
		assert.True(t, errs.IsInvalidDateError(err), bad)
	}

	older, err := content.CreateAchievement(ctx, principalOf(admin), AchievementForm{Title: "Older", Description: "D", Date: "2021-06-30"})
	require.NoError(t, err)
	newer, err := content.CreateAchievement(ctx, principalOf(admin), AchievementForm{Title: "Newer", Description: "D", Date: "2023-02-01"})
	require.NoError(t, err)

	list, err := content.ListAchievements(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	updated, err := content.UpdateAchievement(ctx, principalOf(admin), older.ID, AchievementForm{Title: "Oldest", Description: "D", Date: "2019-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "2019-01-01", updated.Date.Format(models.AchievementDateLayout))

	require.NoError(t, content.DeleteAchievement(ctx, principalOf(admin), older.ID))
	_, err = content.GetAchievement(ctx, older.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestContentChangesRequireAdmin(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := addUser(t, db, "Owner", "owner@example.com", true)
	visitor := principalOf(addUser(t, db, "Bea", "bea@example.com", false))
	content := NewContentService(db, NewLocalStorage(t.TempDir()))

	project, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{Title: "Kept", Description: "D"})
	require.NoError(t, err)
	achievement, err := content.CreateAchievement(ctx, principalOf(admin), AchievementForm{Title: "Kept", Description: "D", Date: "2022-01-01"})
	require.NoError(t, err)

	for _, editor := range []*Principal{nil, visitor} {
		_, err = content.UpdateProject(ctx, editor, project.ID, ProjectForm{Title: "Changed", Description: "D"})
		assert.True(t, errs.IsAdminRequiredError(err))
		assert.True(t, errs.IsAdminRequiredError(content.DeleteProject(ctx, editor, project.ID)))
		_, err = content.UpdateAchievement(ctx, editor, achievement.ID, AchievementForm{Title: "Changed", Description: "D", Date: "2022-01-01"})
		assert.True(t, errs.IsAdminRequiredError(err))
		assert.True(t, errs.IsAdminRequiredError(content.DeleteAchievement(ctx, editor, achievement.ID)))
	}

	stored, err := content.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", stored.Title)
	kept, err := content.GetAchievement(ctx, achievement.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", kept.Title)
}

func TestSameSecondUploadsGetDistinctPaths(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	admin := addUser(t, db, "Owner", "owner@example.com", true)
	dir := t.TempDir()
	content := NewContentService(db, NewLocalStorage(dir), WithClock(newFakeClock().Now))

	a, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{
		Title: "A", Description: "D", Image: &Upload{Filename: "cover.jpg", Body: strings.NewReader("a")},
	})
	require.NoError(t, err)
	b, err := content.CreateProject(ctx, principalOf(admin), ProjectForm{
		Title: "B", Description: "D", Image: &Upload{Filename: "cover.jpg", Body: strings.NewReader("b")},
	})
	require.NoError(t, err)
	assert.NotEqual(t, *a.ImagePath, *b.ImagePath)

	for path, want := range map[string]string{*a.ImagePath: "a", *b.ImagePath: "b"} {
		data, err := os.ReadFile(filepath.Join(dir, filepath.Base(path)))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}
