package config

import (
	"time"

	"github.com/spf13/viper"
)

// DocumentFormat selects the export family for Google-native documents.
type DocumentFormat string

const (
	DocumentFormatOpenXML      DocumentFormat = "openxml"      // docx, xlsx, pptx (default)
	DocumentFormatOpenDocument DocumentFormat = "opendocument" // odt, ods, odp
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Tasks
		Google
		Import
		Watchdog
		Notifications
		Security
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		DefaultUser              string // Used when no upstream user header is present
	}
	Database struct {
		Path string
	}
	Storage struct {
		DataDir string // Root for per-user file trees
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Google struct {
		ClientID          string
		ClientSecret      string
		RedirectURL       string
		AuthURL           string
		TokenURL          string
		APIBaseURL        string // Drive and Calendar
		PeopleBaseURL     string
		PhotosBaseURL     string
		RequestsPerSecond float64

		// Wait for the first response byte; downloads are otherwise unbounded
		ResponseHeaderTimeout time.Duration
	}
	Import struct {
		PhotosFolder         string
		DriveFolder          string
		BatchBudgetBytes     int64
		DocumentFormat       DocumentFormat
		ConsiderSharedAlbums bool
		ConsiderSharedFiles  bool
	}
	Watchdog struct {
		Enabled    bool
		Schedule   string        // Cron format: "*/15 * * * *" = every 15 minutes
		StaleAfter time.Duration // Active sessions without progress for this long get a new batch
	}
	Notifications struct {
		Retention       time.Duration
		CleanupSchedule string // Cron format
	}
	Security struct {
		TokenEncryptionKey string
		KeyFilePath        string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("default_user", DefaultUserID)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("data_dir", DefaultDataDir)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Google defaults
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_url", "http://localhost:8190/api/google/oauth/callback")
	v.SetDefault("google_auth_url", DefaultGoogleAuthURL)
	v.SetDefault("google_token_url", DefaultGoogleTokenURL)
	v.SetDefault("google_api_base_url", DefaultGoogleAPIBaseURL)
	v.SetDefault("google_people_base_url", DefaultGooglePeopleBaseURL)
	v.SetDefault("google_photos_base_url", DefaultGooglePhotosBaseURL)
	v.SetDefault("google_requests_per_second", 10)
	v.SetDefault("google_response_header_timeout", "2m")

	// Import defaults
	v.SetDefault("import_photos_folder", "Google Photos")
	v.SetDefault("import_drive_folder", "Google Drive")
	v.SetDefault("import_batch_budget_bytes", DefaultBatchBudgetBytes)
	v.SetDefault("import_document_format", string(DocumentFormatOpenXML))
	v.SetDefault("import_consider_shared_albums", false)
	v.SetDefault("import_consider_shared_files", false)

	// Watchdog defaults
	v.SetDefault("watchdog_enabled", true)
	v.SetDefault("watchdog_schedule", "*/15 * * * *")
	v.SetDefault("watchdog_stale_after", "2h")

	// Notification defaults
	v.SetDefault("notification_retention", "720h")
	v.SetDefault("notification_cleanup_schedule", "0 4 * * *")

	v.SetDefault("token_encryption_key", "")
	v.SetDefault("token_key_file", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DefaultUser:              v.GetString("DEFAULT_USER"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			DataDir: v.GetString("DATA_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Google: Google{
			ClientID:              v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret:          v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:           v.GetString("GOOGLE_REDIRECT_URL"),
			AuthURL:               v.GetString("GOOGLE_AUTH_URL"),
			TokenURL:              v.GetString("GOOGLE_TOKEN_URL"),
			APIBaseURL:            v.GetString("GOOGLE_API_BASE_URL"),
			PeopleBaseURL:         v.GetString("GOOGLE_PEOPLE_BASE_URL"),
			PhotosBaseURL:         v.GetString("GOOGLE_PHOTOS_BASE_URL"),
			RequestsPerSecond:     v.GetFloat64("GOOGLE_REQUESTS_PER_SECOND"),
			ResponseHeaderTimeout: v.GetDuration("GOOGLE_RESPONSE_HEADER_TIMEOUT"),
		},
		Import: Import{
			PhotosFolder:         v.GetString("IMPORT_PHOTOS_FOLDER"),
			DriveFolder:          v.GetString("IMPORT_DRIVE_FOLDER"),
			BatchBudgetBytes:     v.GetInt64("IMPORT_BATCH_BUDGET_BYTES"),
			DocumentFormat:       DocumentFormat(v.GetString("IMPORT_DOCUMENT_FORMAT")),
			ConsiderSharedAlbums: v.GetBool("IMPORT_CONSIDER_SHARED_ALBUMS"),
			ConsiderSharedFiles:  v.GetBool("IMPORT_CONSIDER_SHARED_FILES"),
		},
		Watchdog: Watchdog{
			Enabled:    v.GetBool("WATCHDOG_ENABLED"),
			Schedule:   v.GetString("WATCHDOG_SCHEDULE"),
			StaleAfter: v.GetDuration("WATCHDOG_STALE_AFTER"),
		},
		Notifications: Notifications{
			Retention:       v.GetDuration("NOTIFICATION_RETENTION"),
			CleanupSchedule: v.GetString("NOTIFICATION_CLEANUP_SCHEDULE"),
		},
		Security: Security{
			TokenEncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
			KeyFilePath:        v.GetString("TOKEN_KEY_FILE"),
		},
	}
}
