package api

import (
	"net/http"
	"net/url"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type achievementHandler struct {
	responder Responder
	logger    zerolog.Logger
	content   *services.ContentService
	imageURL  imageURLFunc
}

func newAchievementHandler(content *services.ContentService, imageURL imageURLFunc) achievementHandler {
	logger := log.With().Str("handlerName", "achievementHandler").Logger()

	return achievementHandler{
		responder: NewResponder(logger),
		logger:    logger,
		content:   content,
		imageURL:  imageURL,
	}
}

const adminAchievementsPath = "/admin/achievements"

func decodeAchievementForm(w http.ResponseWriter, r *http.Request) (services.AchievementForm, func(), error) {
	var form services.AchievementForm
	err := decodeRequest(w, r, &form, func(v url.Values) {
		form.Title = v.Get("title")
		form.Description = v.Get("description")
		form.Date = v.Get("date")
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

func (h achievementHandler) getAllAchievements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := ctxGetPrincipal(r.Context())
		achievements, err := h.content.ListAchievements(r.Context(), principal.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		views := newAchievementViews(achievements, h.imageURL)
		h.responder.WriteJSON(w, AchievementListResponse{
			pageMeta:     newPageMeta(w, r),
			Achievements: views,
			Total:        len(views),
		})
	}
}

func (h achievementHandler) getAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "achievementID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		achievement, err := h.content.GetAchievement(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newAchievementView(achievement, h.imageURL))
	}
}

func (h achievementHandler) createAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, closeUpload, err := decodeAchievementForm(w, r)
		defer closeUpload()
		if err != nil {
			h.responder.Fail(w, r, err, adminAchievementsPath)
			return
		}

		achievement, err := h.content.CreateAchievement(r.Context(), ctxGetPrincipal(r.Context()), form)
		if err != nil {
			h.responder.Fail(w, r, err, adminAchievementsPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSONStatus(w, http.StatusCreated, newAchievementView(achievement, h.imageURL))
			return
		}
		setFlash(w, flashSuccess, "Achievement has been created!")
		redirect(w, r, adminAchievementsPath)
	}
}

func (h achievementHandler) updateAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "achievementID")
		if err != nil {
			h.responder.Fail(w, r, err, adminAchievementsPath)
			return
		}
		editPath := adminAchievementsPath + "/edit/" + id.String()

		form, closeUpload, err := decodeAchievementForm(w, r)
		defer closeUpload()
		if err != nil {
			h.responder.Fail(w, r, err, editPath)
			return
		}

		achievement, err := h.content.UpdateAchievement(r.Context(), ctxGetPrincipal(r.Context()), id, form)
		if err != nil {
			if errs.IsNotFound(err) {
				h.responder.Fail(w, r, err, adminAchievementsPath)
				return
			}
			h.responder.Fail(w, r, err, editPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, newAchievementView(achievement, h.imageURL))
			return
		}
		setFlash(w, flashSuccess, "Achievement has been updated!")
		redirect(w, r, adminAchievementsPath)
	}
}

func (h achievementHandler) deleteAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "achievementID")
		if err != nil {
			h.responder.Fail(w, r, err, adminAchievementsPath)
			return
		}

		if err := h.content.DeleteAchievement(r.Context(), ctxGetPrincipal(r.Context()), id); err != nil {
			h.responder.Fail(w, r, err, adminAchievementsPath)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, StatusResponse{Status: "deleted"})
			return
		}
		setFlash(w, flashSuccess, "Achievement has been deleted!")
		redirect(w, r, adminAchievementsPath)
	}
}
