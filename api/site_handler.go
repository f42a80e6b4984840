package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type siteHandler struct {
	responder Responder
	logger    zerolog.Logger
	site      *services.SiteService
	imageURL  imageURLFunc
}

func newSiteHandler(site *services.SiteService, imageURL imageURLFunc) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder: NewResponder(logger),
		logger:    logger,
		site:      site,
		imageURL:  imageURL,
	}
}

func newPageMeta(w http.ResponseWriter, r *http.Request) pageMeta {
	return pageMeta{
		CurrentUser: ctxGetPrincipal(r.Context()),
		Flashes:     popFlashes(w, r),
	}
}

// home lists the latest and the most liked published projects
// @Summary Home page
// @Tags Site
// @Produce json
// @Success 200 {object} HomePageResponse
// @Router / [get]
func (h siteHandler) home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.site.Home(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, HomePageResponse{
			pageMeta:        newPageMeta(w, r),
			RecentProjects:  newProjectViews(page.RecentProjects, h.imageURL),
			PopularProjects: newProjectViews(page.PopularProjects, h.imageURL),
		})
	}
}

// project shows one project with its comments
// @Summary Project detail
// @Tags Site
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectPageResponse
// @Failure 404 {object} ErrorResponse "Project not found or not published"
// @Router /project/{projectID} [get]
func (h siteHandler) project() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlUUID(r, "projectID")
		if err == nil {
			var page *services.ProjectPage
			page, err = h.site.Project(r.Context(), ctxGetPrincipal(r.Context()), projectID)
			if err == nil {
				h.responder.WriteJSON(w, ProjectPageResponse{
					pageMeta:  newPageMeta(w, r),
					Project:   newProjectView(page.Project, h.imageURL),
					Comments:  newCommentViews(page.Comments),
					UserLiked: page.UserLiked,
				})
				return
			}
		}

		if errs.IsNotFound(err) && !wantsJSON(r) {
			setFlash(w, flashWarning, "Project not found.")
			redirect(w, r, "/")
			return
		}
		h.responder.WriteError(w, err)
	}
}

func (h siteHandler) about() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.site.About(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		response := AboutPageResponse{
			pageMeta:     newPageMeta(w, r),
			Achievements: newAchievementViews(page.Achievements, h.imageURL),
		}
		if page.Owner != nil {
			response.OwnerName = page.Owner.Name
		}
		h.responder.WriteJSON(w, response)
	}
}
