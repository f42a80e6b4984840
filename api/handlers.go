package api

import (
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, router router, sessions *sessionManager, s settings) *routeHandlers {
	opts := router.serviceOpts
	imageURL := router.storage.URL

	auth := services.NewAuthService(database, router.mailer, opts...)
	content := services.NewContentService(database, router.storage, opts...)
	engagement := services.NewEngagementService(database, opts...)
	notifications := services.NewNotificationService(database, opts...)
	site := services.NewSiteService(database, opts...)
	contact := services.NewContactService(database, opts...)

	return &routeHandlers{
		authHandler:        newAuthHandler(auth, sessions, s.baseURL, s.concealUnknownEmail),
		siteHandler:        newSiteHandler(site, imageURL),
		engagementHandler:  newEngagementHandler(engagement),
		projectHandler:     newProjectHandler(content, imageURL),
		achievementHandler: newAchievementHandler(content, imageURL),
		adminHandler:       newAdminHandler(site, notifications),
		contactHandler:     newContactHandler(contact),
		healthHandler:      newHealthHandler(database, router.startupTime),
	}
}
