package entities

import (
	"time"

	"gorm.io/gorm"
)

// OAuthProvider represents the OAuth provider type
type OAuthProvider string

const (
	OAuthProviderGoogle OAuthProvider = "google"
)

// OAuthToken stores a user's encrypted Google credential.
type OAuthToken struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Provider OAuthProvider `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_account" json:"provider"`

	// AccountID is the local user that owns the credential
	AccountID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_account" json:"account_id"`

	// AccessToken and RefreshToken hold base64-encoded AES-256-GCM ciphertext
	AccessToken  string `gorm:"type:text;not null" json:"-"`
	RefreshToken string `gorm:"type:text" json:"-"`

	TokenType string     `gorm:"type:varchar(50);default:Bearer" json:"token_type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Scope     string     `gorm:"type:text" json:"scope,omitempty"`

	// RemoteAccount is the Google identity (email) reported after authorization
	RemoteAccount string `gorm:"type:varchar(255)" json:"remote_account,omitempty"`

	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at,omitempty"`
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// IsExpired checks if the access token has expired
func (t *OAuthToken) IsExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*t.ExpiresAt)
}

// DecryptedToken holds the decrypted credential for use in memory.
// It is never stored directly in the database.
type DecryptedToken struct {
	Provider      OAuthProvider
	AccountID     string
	AccessToken   string
	RefreshToken  string
	TokenType     string
	ExpiresAt     *time.Time
	Scope         string
	RemoteAccount string
}
