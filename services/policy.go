package services

import (
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
)

// Principal is the authenticated caller as carried by the session.
type Principal struct {
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"is_admin"`
}

// The site has a single owner: every piece of content belongs to the admin,
// so managing content and seeing drafts both come down to the admin flag.

// CanManageContent reports whether p may create, edit or delete projects and achievements.
func CanManageContent(p *Principal) bool {
	return p != nil && p.IsAdmin
}

// CanViewProject reports whether p may see project. Published projects are public.
func CanViewProject(p *Principal, project *models.Project) bool {
	if project == nil {
		return false
	}
	return project.IsPublished() || CanManageContent(p)
}

// ShouldNotifyOwner reports whether engagement on content owned by owner
// produces a notification.
func ShouldNotifyOwner(owner *models.User) bool {
	return owner != nil && owner.IsAdmin
}
