package settingsstore

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/database/settings"
	"github.com/mrlokans/google-importer/internal/entities"
)

// Priority: database > environment > default
type SettingsStore struct {
	repo    *settings.Repository
	google  config.Google
	imports config.Import
}

func New(repo *settings.Repository, cfg *config.Config) *SettingsStore {
	return &SettingsStore{
		repo:    repo,
		google:  cfg.Google,
		imports: cfg.Import,
	}
}

// GetUserValue returns the user's value for key, or def when unset.
func (s *SettingsStore) GetUserValue(userID, key, def string) string {
	setting, err := s.repo.GetSetting(userID, entities.AppID, key)
	if err != nil || setting.Value == "" {
		return def
	}
	return setting.Value
}

func (s *SettingsStore) SetUserValue(userID, key, value string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	return s.repo.SetSetting(userID, entities.AppID, key, value)
}

func (s *SettingsStore) DeleteUserValue(userID, key string) error {
	err := s.repo.DeleteSetting(userID, entities.AppID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// GetAppValue returns the app-wide value for key, or def when unset.
func (s *SettingsStore) GetAppValue(key, def string) string {
	return s.GetUserValue("", key, def)
}

func (s *SettingsStore) SetAppValue(key, value string) error {
	return s.repo.SetSetting("", entities.AppID, key, value)
}

// ClientCredentials are the OAuth client id and secret used for every user.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"`
	Source       string `json:"source"` // "database", "environment", or "default"
}

func (c ClientCredentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (s *SettingsStore) GetClientCredentials() ClientCredentials {
	id := s.GetAppValue(entities.SettingKeyClientID, "")
	secret := s.GetAppValue(entities.SettingKeyClientSecret, "")
	if id != "" && secret != "" {
		return ClientCredentials{ClientID: id, ClientSecret: secret, Source: "database"}
	}

	if s.google.ClientID != "" && s.google.ClientSecret != "" {
		return ClientCredentials{ClientID: s.google.ClientID, ClientSecret: s.google.ClientSecret, Source: "environment"}
	}

	return ClientCredentials{Source: "default"}
}

func (s *SettingsStore) SetClientCredentials(clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return errors.New("client id and secret are required")
	}
	if err := s.SetAppValue(entities.SettingKeyClientID, clientID); err != nil {
		return fmt.Errorf("save client id: %w", err)
	}
	if err := s.SetAppValue(entities.SettingKeyClientSecret, clientSecret); err != nil {
		return fmt.Errorf("save client secret: %w", err)
	}
	return nil
}
