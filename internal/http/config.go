package http

import (
	"github.com/mrlokans/google-importer/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Database
	HealthChecks map[string]HealthCheck
	Sessions     ActiveSessionLister

	// Importers
	Photos   PhotosService
	Drive    DriveService
	Calendar CalendarService
	Contacts ContactsService

	// Google authorization
	Flow          WebFlow
	Connection    Connection
	UserValues    UserValueStore
	OAuthRedirect string

	// Notifications
	Notifications NotificationLister

	// Task status, nil when the task queue is disabled
	TaskClient TaskStatusReader

	// Users
	UserHeader  string
	DefaultUser string

	// Application info
	Version string
}
