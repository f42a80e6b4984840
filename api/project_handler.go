package api

import (
	"net/http"
	"net/url"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	content   *services.ContentService
	imageURL  imageURLFunc
}

func newProjectHandler(content *services.ContentService, imageURL imageURLFunc) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		content:   content,
		imageURL:  imageURL,
	}
}

const adminProjectsPath = "/admin/projects"

// decodeProjectForm reads the project fields and the optional image. The
// returned close func releases the uploaded file.
func decodeProjectForm(w http.ResponseWriter, r *http.Request) (services.ProjectForm, func(), error) {
	var form services.ProjectForm
	err := decodeRequest(w, r, &form, func(v url.Values) {
		form.Title = v.Get("title")
		form.Description = v.Get("description")
		form.Tags = v.Get("tags")
		form.Status = v.Get("status")
	})
	if err != nil {
		return form, func() {}, err
	}

	upload, file, err := formImage(r)
	if err != nil {
		return form, func() {}, err
	}
	form.Image = upload
	return form, func() {
		if file != nil {
			file.Close()
		}
	}, nil
}

// getAllProjects lists every project, drafts included
// @Summary List projects (admin)
// @Tags Admin
// @Produce json
// @Success 200 {object} ProjectListResponse
// @Failure 401 {object} ErrorResponse "Login required"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Router /admin/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.content.ListProjects(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		views := newProjectViews(projects, h.imageURL)
		h.responder.WriteJSON(w, ProjectListResponse{
			pageMeta: newPageMeta(w, r),
			Projects: views,
			Total:    len(views),
		})
	}
}

// getProject returns a project for the edit form
// @Summary Get project (admin)
// @Tags Admin
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectView
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /admin/projects/edit/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.content.GetProject(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectView(project, h.imageURL))
	}
}

// createProject adds a project owned by the current admin
// @Summary Create project
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Success 201 {object} ProjectView
// @Failure 400 {object} ErrorResponse "Validation failed or unsupported image"
// @Router /admin/projects/new [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, closeUpload, err := decodeProjectForm(w, r)
		defer closeUpload()
		if err != nil {
			h.responder.Fail(w, r, err, adminProjectsPath)
			return
		}

		project, err := h.content.CreateProject(r.Context(), ctxGetPrincipal(r.Context()), form)
		if err != nil {
			h.responder.Fail(w, r, err, adminProjectsPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSONStatus(w, http.StatusCreated, newProjectView(project, h.imageURL))
			return
		}
		setFlash(w, flashSuccess, "Project has been created!")
		redirect(w, r, adminProjectsPath)
	}
}

// updateProject rewrites a project; the image is kept unless a new one is sent
// @Summary Update project
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectView
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /admin/projects/edit/{projectID} [post]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlUUID(r, "projectID")
		if err != nil {
			h.responder.Fail(w, r, err, adminProjectsPath)
			return
		}
		editPath := adminProjectsPath + "/edit/" + projectID.String()

		form, closeUpload, err := decodeProjectForm(w, r)
		defer closeUpload()
		if err != nil {
			h.responder.Fail(w, r, err, editPath)
			return
		}

		project, err := h.content.UpdateProject(r.Context(), ctxGetPrincipal(r.Context()), projectID, form)
		if err != nil {
			if errs.IsNotFound(err) {
				h.responder.Fail(w, r, err, adminProjectsPath)
				return
			}
			h.responder.Fail(w, r, err, editPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, newProjectView(project, h.imageURL))
			return
		}
		setFlash(w, flashSuccess, "Project has been updated!")
		redirect(w, r, adminProjectsPath)
	}
}

// deleteProject removes a project with its comments and likes
// @Summary Delete project
// @Tags Admin
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /admin/projects/delete/{projectID} [post]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlUUID(r, "projectID")
		if err != nil {
			h.responder.Fail(w, r, err, adminProjectsPath)
			return
		}

		if err := h.content.DeleteProject(r.Context(), ctxGetPrincipal(r.Context()), projectID); err != nil {
			h.responder.Fail(w, r, err, adminProjectsPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, StatusResponse{Status: "deleted"})
			return
		}
		setFlash(w, flashSuccess, "Project has been deleted!")
		redirect(w, r, adminProjectsPath)
	}
}
