package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler        authHandler
	siteHandler        siteHandler
	engagementHandler  engagementHandler
	projectHandler     projectHandler
	achievementHandler achievementHandler
	adminHandler       adminHandler
	contactHandler     contactHandler
	healthHandler      healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"title"`
	Details string            `json:"details,omitempty" example:"Additional error details"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// pageMeta is carried by every page response.
type pageMeta struct {
	CurrentUser *services.Principal `json:"current_user,omitempty"`
	Flashes     []Flash             `json:"flashes,omitempty"`
}

type ProjectView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImagePath   *string   `json:"image_path,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	LikesCount  int       `json:"likes_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AchievementView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	ImagePath   *string   `json:"image_path,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CommentView struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type HomePageResponse struct {
	pageMeta
	RecentProjects  []ProjectView `json:"recent_projects"`
	PopularProjects []ProjectView `json:"popular_projects"`
}

type ProjectPageResponse struct {
	pageMeta
	Project   ProjectView   `json:"project"`
	Comments  []CommentView `json:"comments"`
	UserLiked bool          `json:"user_liked"`
}

type AboutPageResponse struct {
	pageMeta
	OwnerName    string            `json:"owner_name,omitempty"`
	Achievements []AchievementView `json:"achievements"`
}

type FormPageResponse struct {
	pageMeta
	Form string `json:"form"`
	Next string `json:"next,omitempty"`
}

type ResetPageResponse struct {
	pageMeta
	Form  string `json:"form"`
	Token string `json:"token"`
}

type SessionResponse struct {
	User *models.User `json:"user"`
	Next string       `json:"next,omitempty"`
}

type DashboardResponse struct {
	pageMeta
	Counts *services.DashboardCounts `json:"counts"`
}

type ProjectListResponse struct {
	pageMeta
	Projects []ProjectView `json:"projects"`
	Total    int           `json:"total"`
}

type AchievementListResponse struct {
	pageMeta
	Achievements []AchievementView `json:"achievements"`
	Total        int               `json:"total"`
}

type NotificationListResponse struct {
	pageMeta
	Notifications []*models.Notification `json:"notifications"`
	New           int                    `json:"new"`
}

type ContactListResponse struct {
	pageMeta
	Messages []*models.ContactMessage `json:"messages"`
	Total    int                      `json:"total"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// imageURLFunc turns a stored image path into a URL clients can fetch.
type imageURLFunc func(relPath string) string

func newProjectView(p *models.Project, imageURL imageURLFunc) ProjectView {
	view := ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ImagePath:   p.ImagePath,
		Tags:        p.TagList(),
		Status:      string(p.Status),
		LikesCount:  p.LikesCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	if p.ImagePath != nil {
		view.ImageURL = imageURL(*p.ImagePath)
	}
	return view
}

func newProjectViews(projects []*models.Project, imageURL imageURLFunc) []ProjectView {
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newProjectView(p, imageURL))
	}
	return views
}

func newAchievementView(a *models.Achievement, imageURL imageURLFunc) AchievementView {
	view := AchievementView{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date.Format(models.AchievementDateLayout),
		ImagePath:   a.ImagePath,
		CreatedAt:   a.CreatedAt,
	}
	if a.ImagePath != nil {
		view.ImageURL = imageURL(*a.ImagePath)
	}
	return view
}

func newAchievementViews(achievements []*models.Achievement, imageURL imageURLFunc) []AchievementView {
	views := make([]AchievementView, 0, len(achievements))
	for _, a := range achievements {
		views = append(views, newAchievementView(a, imageURL))
	}
	return views
}

func newCommentViews(comments []*models.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		view := CommentView{ID: c.ID, Content: c.Content, CreatedAt: c.CreatedAt}
		if c.Author != nil {
			view.AuthorName = c.Author.Name
		}
		views = append(views, view)
	}
	return views
}
