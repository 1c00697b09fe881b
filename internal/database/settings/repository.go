// Package settings provides database operations for scoped key/value settings.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	setting, err := repo.GetSetting("alice", entities.AppID, "document_format")
//
// App-wide values use an empty user id.
package settings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/google-importer/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by scope and key.
func (r *Repository) GetSetting(userID, appID, key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("user_id = ? AND app_id = ? AND key = ?", userID, appID, key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting creates or updates a setting in a single statement.
func (r *Repository) SetSetting(userID, appID, key, value string) error {
	var setting entities.Setting
	result := r.db.Where("user_id = ? AND app_id = ? AND key = ?", userID, appID, key).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = entities.Setting{
			UserID: userID,
			AppID:  appID,
			Key:    key,
			Value:  value,
		}
		return r.db.Create(&setting).Error
	} else if result.Error != nil {
		return result.Error
	}

	return r.db.Model(&setting).Update("value", value).Error
}

// DeleteSetting removes a setting. Deleting a missing key is not an error.
func (r *Repository) DeleteSetting(userID, appID, key string) error {
	return r.db.Where("user_id = ? AND app_id = ? AND key = ?", userID, appID, key).
		Delete(&entities.Setting{}).Error
}

// ListByKey returns every user-scoped setting stored under key.
func (r *Repository) ListByKey(appID, key string) ([]entities.Setting, error) {
	var result []entities.Setting
	err := r.db.Where("app_id = ? AND key = ? AND user_id <> ''", appID, key).
		Order("user_id ASC").
		Find(&result).Error
	return result, err
}
