package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/api/middleware"
)

// RegisterRoutes mounts the REST API. Everything under /api except register
// and login requires a session.
func RegisterRoutes(router gin.IRouter, h *Handlers, authn middleware.Authenticator) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	private := api.Group("")
	private.Use(middleware.RequireSession(authn))

	// Account
	private.POST("/logout", h.Logout)
	private.GET("/user", h.CurrentUser)

	// Content history
	private.GET("/content-history", h.ListHistory)
	private.POST("/content-history", h.CreateHistory)
	private.GET("/content-history/export", h.ExportHistory)
	private.DELETE("/content-history/:id", h.DeleteHistory)

	// Analyses
	private.POST("/analyze", h.Analyze)
	private.GET("/analyses", h.ListAnalyses)
	private.GET("/analyses/summary", h.AnalysesSummary)
	private.DELETE("/analyses/:id", h.DeleteAnalysis)

	// Scheduling
	private.POST("/schedule", h.SchedulePost)
	private.GET("/scheduled-posts", h.ListScheduledPosts)

	// Settings
	private.GET("/settings", h.GetSettings)
	private.PATCH("/settings", h.UpdateSettings)

	// Social accounts
	private.GET("/social-accounts", h.ListSocialAccounts)
	private.POST("/social-accounts", h.AddSocialAccount)
	private.DELETE("/social-accounts/:id", h.RemoveSocialAccount)

	// Client diagnostics
	private.POST("/client-logs", h.IngestClientLogs)
}
