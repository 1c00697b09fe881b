// Package tokenstore keeps each user's Google credential encrypted at rest.
package tokenstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/google-importer/internal/crypto"
	"github.com/mrlokans/google-importer/internal/entities"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "TOKEN_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".google-importer-token-key"
)

// ErrTokenNotFound is returned when the user has no stored credential.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore provides secure storage for OAuth tokens
type TokenStore struct {
	db     *gorm.DB
	sealer *crypto.Sealer
}

// Config holds configuration for the token store
type Config struct {
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte key. When empty the
	// environment and then the key file are consulted.
	EncryptionKey string

	// KeyFilePath defaults to ~/.google-importer-token-key
	KeyFilePath string
}

func New(cfg Config) (*TokenStore, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	sealer, err := crypto.NewSealerFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create sealer: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.OAuthToken{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &TokenStore{db: db, sealer: sealer}, nil
}

func resolveEncryptionKey(cfg Config) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	keyFilePath := GetKeyFilePath(cfg.KeyFilePath)
	if data, err := os.ReadFile(keyFilePath); err == nil {
		return string(data), nil
	}

	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}

	log.Printf("Generated new token encryption key at %s", keyFilePath)
	return newKey, nil
}

// label binds ciphertext to its row so tokens cannot be swapped between users.
func label(provider entities.OAuthProvider, accountID, field string) string {
	return string(provider) + ":" + accountID + ":" + field
}

// SaveToken creates or replaces the credential for token.Provider/AccountID.
func (s *TokenStore) SaveToken(token *entities.DecryptedToken) error {
	encAccess, err := s.sealer.Seal(token.AccessToken, label(token.Provider, token.AccountID, "access"))
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := s.sealer.Seal(token.RefreshToken, label(token.Provider, token.AccountID, "refresh"))
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	dbToken := &entities.OAuthToken{
		Provider:      token.Provider,
		AccountID:     token.AccountID,
		AccessToken:   encAccess,
		RefreshToken:  encRefresh,
		TokenType:     token.TokenType,
		ExpiresAt:     token.ExpiresAt,
		Scope:         token.Scope,
		RemoteAccount: token.RemoteAccount,
	}

	result := s.db.Unscoped().Where("provider = ? AND account_id = ?", token.Provider, token.AccountID).
		Assign(map[string]interface{}{
			"access_token":   encAccess,
			"refresh_token":  encRefresh,
			"token_type":     token.TokenType,
			"expires_at":     token.ExpiresAt,
			"scope":          token.Scope,
			"remote_account": token.RemoteAccount,
			"deleted_at":     nil,
			"updated_at":     time.Now(),
		}).
		FirstOrCreate(dbToken)
	if result.Error != nil {
		return fmt.Errorf("failed to save token: %w", result.Error)
	}
	return nil
}

// GetToken returns the decrypted credential or ErrTokenNotFound.
func (s *TokenStore) GetToken(provider entities.OAuthProvider, accountID string) (*entities.DecryptedToken, error) {
	var dbToken entities.OAuthToken
	err := s.db.Where("provider = ? AND account_id = ?", provider, accountID).First(&dbToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	access, err := s.sealer.Open(dbToken.AccessToken, label(provider, accountID, "access"))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refresh, err := s.sealer.Open(dbToken.RefreshToken, label(provider, accountID, "refresh"))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &entities.DecryptedToken{
		Provider:      dbToken.Provider,
		AccountID:     dbToken.AccountID,
		AccessToken:   access,
		RefreshToken:  refresh,
		TokenType:     dbToken.TokenType,
		ExpiresAt:     dbToken.ExpiresAt,
		Scope:         dbToken.Scope,
		RemoteAccount: dbToken.RemoteAccount,
	}, nil
}

// HasToken reports whether the user has a stored credential.
func (s *TokenStore) HasToken(provider entities.OAuthProvider, accountID string) (bool, error) {
	var count int64
	err := s.db.Model(&entities.OAuthToken{}).
		Where("provider = ? AND account_id = ?", provider, accountID).
		Count(&count).Error
	return count > 0, err
}

// UpdateTokenAfterRefresh replaces the access token in place. The refresh
// token is replaced only when the provider rotated it.
func (s *TokenStore) UpdateTokenAfterRefresh(provider entities.OAuthProvider, accountID, newAccessToken, newRefreshToken string, expiresAt *time.Time) error {
	encAccess, err := s.sealer.Seal(newAccessToken, label(provider, accountID, "access"))
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	updates := map[string]interface{}{
		"access_token":      encAccess,
		"expires_at":        expiresAt,
		"last_refreshed_at": time.Now(),
	}

	if newRefreshToken != "" {
		encRefresh, err := s.sealer.Seal(newRefreshToken, label(provider, accountID, "refresh"))
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		updates["refresh_token"] = encRefresh
	}

	result := s.db.Model(&entities.OAuthToken{}).
		Where("provider = ? AND account_id = ?", provider, accountID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// UpdateLastUsed stamps the credential's last use.
func (s *TokenStore) UpdateLastUsed(provider entities.OAuthProvider, accountID string) error {
	return s.db.Model(&entities.OAuthToken{}).
		Where("provider = ? AND account_id = ?", provider, accountID).
		Update("last_used_at", time.Now()).Error
}

// DeleteToken removes the credential. Deleting a missing credential is not an error.
func (s *TokenStore) DeleteToken(provider entities.OAuthProvider, accountID string) error {
	result := s.db.Unscoped().Where("provider = ? AND account_id = ?", provider, accountID).
		Delete(&entities.OAuthToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete token: %w", result.Error)
	}
	return nil
}

func (s *TokenStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// GetKeyFilePath returns the path to the key file being used
func GetKeyFilePath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultKeyFileName
	}
	return filepath.Join(homeDir, DefaultKeyFileName)
}
