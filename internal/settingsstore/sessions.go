package settingsstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/google-importer/internal/entities"
)

// Import sessions cross the settings boundary only through this file.
// Each session is one JSON value, so SaveSession replaces every field in
// one write.

// GetSession loads the user's session for domain. A missing session is the
// zero value (inactive, no progress).
func (s *SettingsStore) GetSession(userID string, domain entities.ImportDomain) (entities.ImportSession, error) {
	var session entities.ImportSession

	setting, err := s.repo.GetSetting(userID, entities.AppID, domain.SessionKey())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("load %s session: %w", domain, err)
	}
	if setting.Value == "" {
		return session, nil
	}

	if err := json.Unmarshal([]byte(setting.Value), &session); err != nil {
		return entities.ImportSession{}, fmt.Errorf("decode %s session: %w", domain, err)
	}
	return session, nil
}

func (s *SettingsStore) SaveSession(userID string, domain entities.ImportDomain, session entities.ImportSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode %s session: %w", domain, err)
	}
	if err := s.SetUserValue(userID, domain.SessionKey(), string(data)); err != nil {
		return fmt.Errorf("save %s session: %w", domain, err)
	}
	return nil
}

// ClearSession returns the user's domain to idle.
func (s *SettingsStore) ClearSession(userID string, domain entities.ImportDomain) error {
	if err := s.DeleteUserValue(userID, domain.SessionKey()); err != nil {
		return fmt.Errorf("clear %s session: %w", domain, err)
	}
	return nil
}

// UserSession pairs a session with its owner.
type UserSession struct {
	UserID  string
	Session entities.ImportSession
}

// ListActiveSessions returns every active session for domain. Undecodable
// values are skipped.
func (s *SettingsStore) ListActiveSessions(domain entities.ImportDomain) ([]UserSession, error) {
	rows, err := s.repo.ListByKey(entities.AppID, domain.SessionKey())
	if err != nil {
		return nil, fmt.Errorf("list %s sessions: %w", domain, err)
	}

	var active []UserSession
	for _, row := range rows {
		var session entities.ImportSession
		if err := json.Unmarshal([]byte(row.Value), &session); err != nil {
			continue
		}
		if session.Active {
			active = append(active, UserSession{UserID: row.UserID, Session: session})
		}
	}
	return active, nil
}
