package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	if cfg.Sessions != nil {
		health.WithSessions(cfg.Sessions)
	}
	for name, check := range cfg.HealthChecks {
		health.AddCheck(name, check)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")
	api.Use(UserMiddleware(cfg.UserHeader, cfg.DefaultUser))

	// Google authorization
	if cfg.Flow != nil {
		auth := NewGoogleAuthController(cfg.Flow, cfg.Connection, cfg.UserValues, cfg.OAuthRedirect)
		oauth := api.Group("/google", noStore())
		oauth.GET("/oauth/url", auth.AuthURL)
		oauth.GET("/oauth/callback", auth.Callback)
		oauth.GET("/status", auth.Status)
		oauth.POST("/disconnect", auth.Disconnect)
	}

	// Batched imports
	if cfg.Photos != nil {
		photos := NewPhotosController(cfg.Photos)
		api.POST("/google/photos/import", photos.StartImport)
		api.GET("/google/photos/import", photos.GetImportInformation)
		api.DELETE("/google/photos/import", photos.CancelImport)
		api.GET("/google/photos/count", photos.GetPhotoNumber)
	}
	if cfg.Drive != nil {
		drive := NewDriveController(cfg.Drive)
		api.POST("/google/drive/import", drive.StartImport)
		api.GET("/google/drive/import", drive.GetImportInformation)
		api.DELETE("/google/drive/import", drive.CancelImport)
		api.GET("/google/drive/size", drive.GetDriveSize)
	}

	// Single-pass imports
	if cfg.Calendar != nil {
		calendar := NewCalendarController(cfg.Calendar)
		api.GET("/google/calendars", calendar.GetCalendarList)
		api.POST("/google/calendars/import", calendar.ImportCalendar)
	}
	if cfg.Contacts != nil {
		contacts := NewContactsController(cfg.Contacts)
		api.GET("/google/contacts/count", contacts.GetContactNumber)
		api.POST("/google/contacts/import", contacts.ImportContacts)
	}

	if cfg.Notifications != nil {
		notifications := NewNotificationsController(cfg.Notifications)
		api.GET("/notifications", notifications.List)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
