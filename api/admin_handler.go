package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder     Responder
	logger        zerolog.Logger
	site          *services.SiteService
	notifications *services.NotificationService
}

func newAdminHandler(site *services.SiteService, notifications *services.NotificationService) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		site:          site,
		notifications: notifications,
	}
}

// dashboard shows the admin counters
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} DashboardResponse
// @Router /admin [get]
func (h adminHandler) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.site.Dashboard(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, DashboardResponse{pageMeta: newPageMeta(w, r), Counts: counts})
	}
}

// listNotifications returns the admin's notifications and marks them read.
// Each item keeps the read flag it had before this request.
func (h adminHandler) listNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := ctxGetPrincipal(r.Context())
		notifications, err := h.notifications.List(r.Context(), principal.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		unseen := 0
		for _, n := range notifications {
			if !n.Read {
				unseen++
			}
		}
		h.responder.WriteJSON(w, NotificationListResponse{
			pageMeta:      newPageMeta(w, r),
			Notifications: notifications,
			New:           unseen,
		})
	}
}
