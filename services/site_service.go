package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// HomeProjectLimit bounds both project lists on the home page.
const HomeProjectLimit = 6

type HomePage struct {
	RecentProjects  []*models.Project
	PopularProjects []*models.Project
}

type ProjectPage struct {
	Project   *models.Project
	Comments  []*models.Comment
	UserLiked bool
}

type AboutPage struct {
	Owner        *models.User
	Achievements []*models.Achievement
}

type DashboardCounts struct {
	Projects            int64 `json:"projects"`
	Comments            int64 `json:"comments"`
	Likes               int64 `json:"likes"`
	UnreadNotifications int64 `json:"unread_notifications"`
	UnreadMessages      int64 `json:"unread_messages"`
}

// SiteService assembles the read-only public pages and the admin dashboard.
type SiteService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewSiteService(db database.Database, opts ...Option) *SiteService {
	o := newServiceOptions("site", opts)
	return &SiteService{db: db, logger: o.logger}
}

func (s *SiteService) Home(ctx context.Context) (*HomePage, error) {
	recent, err := s.db.ProjectRepo().FindRecentPublished(ctx, HomeProjectLimit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	popular, err := s.db.ProjectRepo().FindPopularPublished(ctx, HomeProjectLimit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	return &HomePage{RecentProjects: recent, PopularProjects: popular}, nil
}

// Project loads a project with its comments. Drafts are only shown to admins.
func (s *SiteService) Project(ctx context.Context, viewer *Principal, id uuid.UUID) (*ProjectPage, error) {
	project, err := visibleProject(ctx, s.db, viewer, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.db.CommentRepo().FindByProject(ctx, project.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}

	page := &ProjectPage{Project: project, Comments: comments}
	if viewer != nil {
		like, err := s.db.LikeRepo().Find(ctx, viewer.UserID, project.ID)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "like", err)
		}
		page.UserLiked = like != nil
	}
	return page, nil
}

// About shows the site owner and their achievements. With no admin yet the
// page is empty rather than missing.
func (s *SiteService) About(ctx context.Context) (*AboutPage, error) {
	owner, err := s.db.UserRepo().FindAdmin(ctx)
	if err != nil {
		if database.IsNotFound(err) {
			return &AboutPage{}, nil
		}
		return nil, errs.NewDatabaseError("find", "admin", err)
	}

	achievements, err := s.db.AchievementRepo().FindByUser(ctx, owner.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "achievements", err)
	}
	return &AboutPage{Owner: owner, Achievements: achievements}, nil
}

// Dashboard gathers the admin counters concurrently.
func (s *SiteService) Dashboard(ctx context.Context) (*DashboardCounts, error) {
	counts := &DashboardCounts{}
	g, gctx := errgroup.WithContext(ctx)

	count := func(entity string, dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return errs.NewDatabaseError("count", entity, err)
			}
			*dst = n
			return nil
		})
	}
	count("projects", &counts.Projects, s.db.ProjectRepo().Count)
	count("comments", &counts.Comments, s.db.CommentRepo().Count)
	count("likes", &counts.Likes, s.db.LikeRepo().Count)
	count("notifications", &counts.UnreadNotifications, s.db.NotificationRepo().CountUnread)
	count("contact messages", &counts.UnreadMessages, s.db.ContactMessageRepo().CountUnread)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
