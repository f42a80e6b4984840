package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
)

type ProjectForm struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description" validate:"required"`
	Tags        string  `json:"tags" validate:"max=200"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft published"`
	Image       *Upload `json:"-"`
}

type AchievementForm struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Image       *Upload `json:"-"`
}

// ContentService manages the admin's projects and achievements.
type ContentService struct {
	db      database.Database
	storage Storage
	now     func() time.Time
	logger  zerolog.Logger
}

func NewContentService(db database.Database, storage Storage, opts ...Option) *ContentService {
	o := newServiceOptions("content", opts)
	return &ContentService{
		db:      db,
		storage: storage,
		now:     o.now,
		logger:  o.logger,
	}
}

func (f *ProjectForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Tags = strings.TrimSpace(f.Tags)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = string(models.StatusDraft)
	}
}

func (f *AchievementForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Date = strings.TrimSpace(f.Date)
}

// ListProjects returns every project, drafts included, newest first.
func (s *ContentService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.db.ProjectRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	return projects, nil
}

func (s *ContentService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return project, nil
}

func (s *ContentService) CreateProject(ctx context.Context, owner *Principal, form ProjectForm) (*models.Project, error) {
	if !CanManageContent(owner) {
		return nil, errs.NewAdminRequiredError()
	}
	form.normalize()
	if err := validateForm(form); err != nil {
		return nil, err
	}
	if err := checkImage(form.Image); err != nil {
		return nil, err
	}

	now := s.now()
	project := &models.Project{
		Title:       form.Title,
		Description: form.Description,
		Tags:        form.Tags,
		Status:      models.ProjectStatus(form.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      owner.UserID,
	}

	imagePath, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return nil, err
	}
	project.ImagePath = imagePath

	if err := s.db.ProjectRepo().Add(ctx, project); err != nil {
		s.discardImage(ctx, imagePath)
		return nil, errs.NewDatabaseError("create", "project", err)
	}

	s.logger.Info().Str("projectId", project.ID.String()).Str("status", form.Status).Msg("project created")
	return project, nil
}

// UpdateProject rewrites the editable fields. Without a new upload the
// current image is kept.
func (s *ContentService) UpdateProject(ctx context.Context, editor *Principal, id uuid.UUID, form ProjectForm) (*models.Project, error) {
	if !CanManageContent(editor) {
		return nil, errs.NewAdminRequiredError()
	}
	form.normalize()
	if err := validateForm(form); err != nil {
		return nil, err
	}
	if err := checkImage(form.Image); err != nil {
		return nil, err
	}

	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}

	imagePath, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return nil, err
	}
	if imagePath != nil {
		project.ImagePath = imagePath
	}
	project.Title = form.Title
	project.Description = form.Description
	project.Tags = form.Tags
	project.Status = models.ProjectStatus(form.Status)
	project.UpdatedAt = s.now()

	if err := s.db.ProjectRepo().Update(ctx, project); err != nil {
		s.discardImage(ctx, imagePath)
		return nil, errs.NewDatabaseError("update", "project", err)
	}

	s.logger.Info().Str("projectId", project.ID.String()).Msg("project updated")
	return project, nil
}

// DeleteProject removes the project; its comments and likes go with it.
func (s *ContentService) DeleteProject(ctx context.Context, editor *Principal, id uuid.UUID) error {
	if !CanManageContent(editor) {
		return errs.NewAdminRequiredError()
	}
	if err := s.db.ProjectRepo().Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	s.logger.Info().Str("projectId", id.String()).Msg("project deleted")
	return nil
}

// ListAchievements returns the owner's achievements, latest date first.
func (s *ContentService) ListAchievements(ctx context.Context, ownerID uuid.UUID) ([]*models.Achievement, error) {
	achievements, err := s.db.AchievementRepo().FindByUser(ctx, ownerID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "achievements", err)
	}
	return achievements, nil
}

func (s *ContentService) GetAchievement(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	achievement, err := s.db.AchievementRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "achievement", err)
	}
	return achievement, nil
}

func (s *ContentService) CreateAchievement(ctx context.Context, owner *Principal, form AchievementForm) (*models.Achievement, error) {
	if !CanManageContent(owner) {
		return nil, errs.NewAdminRequiredError()
	}
	form.normalize()
	date, err := parseAchievementForm(form)
	if err != nil {
		return nil, err
	}

	achievement := &models.Achievement{
		Title:       form.Title,
		Description: form.Description,
		Date:        date,
		CreatedAt:   s.now(),
		UserID:      owner.UserID,
	}

	imagePath, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return nil, err
	}
	achievement.ImagePath = imagePath

	if err := s.db.AchievementRepo().Add(ctx, achievement); err != nil {
		s.discardImage(ctx, imagePath)
		return nil, errs.NewDatabaseError("create", "achievement", err)
	}

	s.logger.Info().Str("achievementId", achievement.ID.String()).Msg("achievement created")
	return achievement, nil
}

func (s *ContentService) UpdateAchievement(ctx context.Context, editor *Principal, id uuid.UUID, form AchievementForm) (*models.Achievement, error) {
	if !CanManageContent(editor) {
		return nil, errs.NewAdminRequiredError()
	}
	form.normalize()
	date, err := parseAchievementForm(form)
	if err != nil {
		return nil, err
	}

	achievement, err := s.db.AchievementRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "achievement", err)
	}

	imagePath, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return nil, err
	}
	if imagePath != nil {
		achievement.ImagePath = imagePath
	}
	achievement.Title = form.Title
	achievement.Description = form.Description
	achievement.Date = date

	if err := s.db.AchievementRepo().Update(ctx, achievement); err != nil {
		s.discardImage(ctx, imagePath)
		return nil, errs.NewDatabaseError("update", "achievement", err)
	}

	s.logger.Info().Str("achievementId", achievement.ID.String()).Msg("achievement updated")
	return achievement, nil
}

func (s *ContentService) DeleteAchievement(ctx context.Context, editor *Principal, id uuid.UUID) error {
	if !CanManageContent(editor) {
		return errs.NewAdminRequiredError()
	}
	if err := s.db.AchievementRepo().Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "achievement", err)
	}
	s.logger.Info().Str("achievementId", id.String()).Msg("achievement deleted")
	return nil
}

func parseAchievementForm(form AchievementForm) (time.Time, error) {
	if err := validateForm(form); err != nil {
		return time.Time{}, err
	}
	if err := checkImage(form.Image); err != nil {
		return time.Time{}, err
	}
	return ParseAchievementDate(form.Date)
}

// ParseAchievementDate accepts only YYYY-MM-DD.
func ParseAchievementDate(value string) (time.Time, error) {
	date, err := time.Parse(models.AchievementDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errs.NewInvalidDateError(value)
	}
	return date, nil
}

func checkImage(upload *Upload) error {
	if upload == nil || upload.Filename == "" {
		return nil
	}
	if !AllowedImage(upload.Filename) || SecureFilename(upload.Filename) == "" {
		return errs.NewUnsupportedImageError(upload.Filename)
	}
	return nil
}

func (s *ContentService) saveImage(ctx context.Context, upload *Upload) (*string, error) {
	if upload == nil || upload.Filename == "" {
		return nil, nil
	}
	stored, err := s.storage.Save(ctx, UploadName(s.now(), upload.Filename), upload.Body)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", upload.Filename).Msg("failed to store upload")
		return nil, errs.NewUploadFailedError(err)
	}
	return &stored, nil
}

func (s *ContentService) discardImage(ctx context.Context, imagePath *string) {
	if imagePath == nil {
		return
	}
	if err := s.storage.Remove(ctx, *imagePath); err != nil {
		s.logger.Warn().Err(err).Str("path", *imagePath).Msg("failed to remove orphaned upload")
	}
}
