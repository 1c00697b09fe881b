package entities

import (
	"time"
)

// Setting is a key/value pair scoped to an application and, for per-user
// values, to a user. App-wide values carry an empty UserID.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;uniqueIndex:idx_setting_scope" json:"user_id"`
	AppID     string    `gorm:"size:64;uniqueIndex:idx_setting_scope" json:"app_id"`
	Key       string    `gorm:"size:100;uniqueIndex:idx_setting_scope" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// AppID is the application scope for every setting this service owns.
const AppID = "google_import"

// Known setting keys
const (
	// App-wide OAuth client credentials
	SettingKeyClientID     = "client_id"
	SettingKeyClientSecret = "client_secret"

	// Per-user import sessions, one JSON document each
	SettingKeyPhotosImportSession = "photos_import_session"
	SettingKeyDriveImportSession  = "drive_import_session"

	// Per-user import preferences
	SettingKeyPhotosOutputDir      = "photo_output_dir"
	SettingKeyDriveOutputDir       = "drive_output_dir"
	SettingKeyDocumentFormat       = "document_format"
	SettingKeyConsiderSharedAlbums = "consider_shared_albums"
	SettingKeyConsiderSharedFiles  = "consider_shared_files"

	// Per-user OAuth state for the web flow
	SettingKeyOAuthState = "oauth_state"
)
