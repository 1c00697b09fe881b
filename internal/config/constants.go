package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./google-importer.db"

	// DefaultDataDir holds per-user file trees written by the photos and drive imports
	DefaultDataDir = "./data"

	// DefaultUserID is the user that owns requests arriving without an upstream identity
	DefaultUserID = "admin"

	// DefaultBatchBudgetBytes bounds the bytes downloaded by one photos or drive batch
	DefaultBatchBudgetBytes int64 = 500 * 1000 * 1000
)

// Google endpoints
const (
	DefaultGoogleAuthURL       = "https://accounts.google.com/o/oauth2/v2/auth"
	DefaultGoogleTokenURL      = "https://oauth2.googleapis.com/token"
	DefaultGoogleAPIBaseURL    = "https://www.googleapis.com"
	DefaultGooglePeopleBaseURL = "https://people.googleapis.com"
	DefaultGooglePhotosBaseURL = "https://photoslibrary.googleapis.com"
)
