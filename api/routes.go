package api

import (
	"github.com/go-chi/chi/v5"
)

// setupFrontendRoutes registers the public pages, the visitor actions and the admin area
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Account
	r.Get("/register", handlers.authHandler.formPage("register"))
	r.Post("/register", handlers.authHandler.register())
	r.Get("/login", handlers.authHandler.formPage("login"))
	r.Post("/login", handlers.authHandler.login())
	r.Get("/logout", handlers.authHandler.logout())
	r.Post("/logout", handlers.authHandler.logout())
	r.Get("/forgot-password", handlers.authHandler.formPage("forgot_password"))
	r.Post("/forgot-password", handlers.authHandler.forgotPassword())
	r.Get("/reset-password/{token}", handlers.authHandler.resetPasswordPage())
	r.Post("/reset-password/{token}", handlers.authHandler.resetPassword())

	// Public pages
	r.Get("/", handlers.siteHandler.home())
	r.Get("/project/{projectID}", handlers.siteHandler.project())
	r.Get("/about", handlers.siteHandler.about())
	r.Post("/contact", handlers.contactHandler.submit())

	// Visitor actions
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.requireSession)

		r.Post("/project/{projectID}/like", handlers.engagementHandler.toggleLike())
		r.Post("/project/{projectID}/comment", handlers.engagementHandler.addComment())
	})

	// Admin area
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.requireAdmin)

		r.Get("/", handlers.adminHandler.dashboard())

		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Post("/projects/new", handlers.projectHandler.createProject())
		r.Get("/projects/edit/{projectID}", handlers.projectHandler.getProject())
		r.Post("/projects/edit/{projectID}", handlers.projectHandler.updateProject())
		r.Post("/projects/delete/{projectID}", handlers.projectHandler.deleteProject())

		r.Get("/achievements", handlers.achievementHandler.getAllAchievements())
		r.Post("/achievements/new", handlers.achievementHandler.createAchievement())
		r.Get("/achievements/edit/{achievementID}", handlers.achievementHandler.getAchievement())
		r.Post("/achievements/edit/{achievementID}", handlers.achievementHandler.updateAchievement())
		r.Post("/achievements/delete/{achievementID}", handlers.achievementHandler.deleteAchievement())

		r.Get("/notifications", handlers.adminHandler.listNotifications())

		r.Get("/messages", handlers.contactHandler.list())
		r.Post("/messages/{messageID}/read", handlers.contactHandler.markRead())
	})
}
