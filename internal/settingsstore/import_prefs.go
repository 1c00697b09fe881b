package settingsstore

import (
	"strconv"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/entities"
)

// ImportPreferences are the per-user knobs of the photos and drive imports.
type ImportPreferences struct {
	PhotosFolder         string                `json:"photos_folder"`
	DriveFolder          string                `json:"drive_folder"`
	DocumentFormat       config.DocumentFormat `json:"document_format"`
	ConsiderSharedAlbums bool                  `json:"consider_shared_albums"`
	ConsiderSharedFiles  bool                  `json:"consider_shared_files"`
}

func (s *SettingsStore) GetImportPreferences(userID string) ImportPreferences {
	format := config.DocumentFormat(s.GetUserValue(userID, entities.SettingKeyDocumentFormat, string(s.imports.DocumentFormat)))
	if format != config.DocumentFormatOpenDocument {
		format = config.DocumentFormatOpenXML
	}

	return ImportPreferences{
		PhotosFolder:         s.GetUserValue(userID, entities.SettingKeyPhotosOutputDir, s.imports.PhotosFolder),
		DriveFolder:          s.GetUserValue(userID, entities.SettingKeyDriveOutputDir, s.imports.DriveFolder),
		DocumentFormat:       format,
		ConsiderSharedAlbums: s.getUserBool(userID, entities.SettingKeyConsiderSharedAlbums, s.imports.ConsiderSharedAlbums),
		ConsiderSharedFiles:  s.getUserBool(userID, entities.SettingKeyConsiderSharedFiles, s.imports.ConsiderSharedFiles),
	}
}

func (s *SettingsStore) getUserBool(userID, key string, def bool) bool {
	v := s.GetUserValue(userID, key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
