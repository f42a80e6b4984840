package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
)

const maxCommentLength = 500

// LikeResult is the state of a like after a toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// EngagementService records likes and comments and notifies the owner.
type EngagementService struct {
	db     database.Database
	now    func() time.Time
	logger zerolog.Logger
}

func NewEngagementService(db database.Database, opts ...Option) *EngagementService {
	o := newServiceOptions("engagement", opts)
	return &EngagementService{
		db:     db,
		now:    o.now,
		logger: o.logger,
	}
}

func likedMessage(actor string, project *models.Project) string {
	return fmt.Sprintf("%s liked your project %q", actor, project.Title)
}

func commentedMessage(actor string, project *models.Project) string {
	return fmt.Sprintf("%s commented on your project %q", actor, project.Title)
}

// visibleProject loads the project inside tx, hiding drafts from non-admins.
func visibleProject(ctx context.Context, tx database.Database, viewer *Principal, projectID uuid.UUID) (*models.Project, error) {
	project, err := tx.ProjectRepo().FindByID(ctx, projectID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NewProjectUnavailableError()
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if !CanViewProject(viewer, project) {
		return nil, errs.NewProjectUnavailableError()
	}
	return project, nil
}

// ToggleLike removes the caller's like if there is one and adds it otherwise.
// The like row, the counter and the owner's notification change together.
func (s *EngagementService) ToggleLike(ctx context.Context, principal *Principal, projectID uuid.UUID) (*LikeResult, error) {
	if principal == nil {
		return nil, errs.NewSessionRequiredError()
	}

	result := &LikeResult{}
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		project, err := visibleProject(ctx, tx, principal, projectID)
		if err != nil {
			return err
		}

		existing, err := tx.LikeRepo().Find(ctx, principal.UserID, project.ID)
		if err != nil {
			return errs.NewDatabaseError("find", "like", err)
		}

		if existing != nil {
			// Only the transaction that removed the row decrements the counter.
			err := tx.LikeRepo().Delete(ctx, existing.ID)
			switch {
			case database.IsNotFound(err):
			case err != nil:
				return errs.NewDatabaseError("delete", "like", err)
			default:
				if err := tx.ProjectRepo().DecrementLikes(ctx, project.ID); err != nil {
					return errs.NewDatabaseError("update", "project", err)
				}
			}
		} else {
			like := &models.Like{
				UserID:    principal.UserID,
				ProjectID: project.ID,
				CreatedAt: s.now(),
			}
			if err := tx.LikeRepo().Add(ctx, like); err != nil {
				return errs.NewDatabaseError("create", "like", err)
			}
			if err := tx.ProjectRepo().IncrementLikes(ctx, project.ID); err != nil {
				return errs.NewDatabaseError("update", "project", err)
			}
			if err := s.notifyOwner(ctx, tx, project, models.NotificationLike, likedMessage(principal.Name, project)); err != nil {
				return err
			}
			result.Liked = true
		}

		count, err := tx.ProjectRepo().LikesCount(ctx, project.ID)
		if err != nil {
			return errs.NewDatabaseError("count", "likes", err)
		}
		result.LikesCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("projectId", projectID.String()).
		Str("userId", principal.UserID.String()).
		Bool("liked", result.Liked).
		Msg("like toggled")
	return result, nil
}

// AddComment stores a comment of 1 to 500 characters on a visible project.
func (s *EngagementService) AddComment(ctx context.Context, principal *Principal, projectID uuid.UUID, content string) (*models.Comment, error) {
	if principal == nil {
		return nil, errs.NewSessionRequiredError()
	}

	content = strings.TrimSpace(content)
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return nil, errs.NewCommentInvalidError("comment is empty")
	case n > maxCommentLength:
		return nil, errs.NewCommentInvalidError(fmt.Sprintf("comment is longer than %d characters", maxCommentLength))
	}

	var comment *models.Comment
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		project, err := visibleProject(ctx, tx, principal, projectID)
		if err != nil {
			return err
		}

		comment = &models.Comment{
			Content:   content,
			CreatedAt: s.now(),
			UserID:    principal.UserID,
			ProjectID: project.ID,
		}
		if err := tx.CommentRepo().Add(ctx, comment); err != nil {
			return errs.NewDatabaseError("create", "comment", err)
		}
		return s.notifyOwner(ctx, tx, project, models.NotificationComment, commentedMessage(principal.Name, project))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("projectId", projectID.String()).
		Str("commentId", comment.ID.String()).
		Msg("comment added")
	return comment, nil
}

func (s *EngagementService) notifyOwner(ctx context.Context, tx database.Database, project *models.Project, kind models.NotificationType, message string) error {
	if !ShouldNotifyOwner(project.User) {
		return nil
	}
	notification := &models.Notification{
		Type:      kind,
		Message:   message,
		CreatedAt: s.now(),
		UserID:    project.UserID,
	}
	if err := tx.NotificationRepo().Add(ctx, notification); err != nil {
		return errs.NewDatabaseError("create", "notification", err)
	}
	return nil
}

// RecountLikes rebuilds every project's like counter from the like rows.
func (s *EngagementService) RecountLikes(ctx context.Context) (int64, error) {
	fixed, err := s.db.ProjectRepo().RecountLikes(ctx)
	if err != nil {
		return 0, errs.NewDatabaseError("recount", "likes", err)
	}
	if fixed > 0 {
		s.logger.Warn().Int64("projects", fixed).Msg("repaired drifted like counters")
	}
	return fixed, nil
}
