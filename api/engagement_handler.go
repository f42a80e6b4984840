package api

import (
	"net/http"
	"net/url"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type engagementHandler struct {
	responder  Responder
	logger     zerolog.Logger
	engagement *services.EngagementService
}

func newEngagementHandler(engagement *services.EngagementService) engagementHandler {
	logger := log.With().Str("handlerName", "engagementHandler").Logger()

	return engagementHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		engagement: engagement,
	}
}

// failEngagement sends browsers back home when the project is gone and back
// to the project otherwise.
func (h engagementHandler) failEngagement(w http.ResponseWriter, r *http.Request, err error, projectPath string) {
	if errs.IsNotFound(err) && !wantsJSON(r) {
		setFlash(w, flashWarning, "Project not found.")
		redirect(w, r, "/")
		return
	}
	h.responder.Fail(w, r, err, projectPath)
}

// toggleLike likes or unlikes a project for the current user
// @Summary Toggle like
// @Tags Engagement
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.LikeResult
// @Failure 401 {object} ErrorResponse "Login required"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /project/{projectID}/like [post]
func (h engagementHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlUUID(r, "projectID")
		if err != nil {
			h.failEngagement(w, r, err, "/")
			return
		}
		projectPath := "/project/" + projectID.String()

		result, err := h.engagement.ToggleLike(r.Context(), ctxGetPrincipal(r.Context()), projectID)
		if err != nil {
			h.failEngagement(w, r, err, projectPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, result)
			return
		}
		redirect(w, r, projectPath)
	}
}

// addComment posts a comment on a project
// @Summary Add comment
// @Tags Engagement
// @Param projectID path string true "Project ID" format(uuid)
// @Success 201 {object} CommentView
// @Failure 400 {object} ErrorResponse "Empty or too long comment"
// @Router /project/{projectID}/comment [post]
func (h engagementHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlUUID(r, "projectID")
		if err != nil {
			h.failEngagement(w, r, err, "/")
			return
		}
		projectPath := "/project/" + projectID.String()

		var body struct {
			Content string `json:"content"`
		}
		err = decodeRequest(w, r, &body, func(v url.Values) {
			body.Content = v.Get("content")
		})
		if err != nil {
			h.responder.Fail(w, r, err, projectPath)
			return
		}

		principal := ctxGetPrincipal(r.Context())
		comment, err := h.engagement.AddComment(r.Context(), principal, projectID, body.Content)
		if err != nil {
			if errs.IsValidation(err) && !wantsJSON(r) {
				setFlash(w, flashDanger, "Could not add comment. Comments must be between 1 and 500 characters.")
				redirect(w, r, projectPath)
				return
			}
			h.failEngagement(w, r, err, projectPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSONStatus(w, http.StatusCreated, CommentView{
				ID:         comment.ID,
				Content:    comment.Content,
				AuthorName: principal.Name,
				CreatedAt:  comment.CreatedAt,
			})
			return
		}
		setFlash(w, flashSuccess, "Your comment has been added!")
		redirect(w, r, projectPath)
	}
}
