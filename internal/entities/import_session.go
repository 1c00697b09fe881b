package entities

import (
	"time"
)

// ImportDomain names the batched imports that keep a durable session.
type ImportDomain string

const (
	ImportDomainPhotos ImportDomain = "photos"
	ImportDomainDrive  ImportDomain = "drive"
)

// SessionKey returns the per-user setting key holding the domain's session.
func (d ImportDomain) SessionKey() string {
	switch d {
	case ImportDomainPhotos:
		return SettingKeyPhotosImportSession
	case ImportDomainDrive:
		return SettingKeyDriveImportSession
	default:
		return string(d) + "_import_session"
	}
}

// ImportSession is the durable progress record of a batched import.
// It is persisted as a single JSON value so one write replaces all fields.
type ImportSession struct {
	Active         bool       `json:"active"`
	ImportedCount  int64      `json:"imported_count"`
	ImportedBytes  int64      `json:"imported_bytes"`
	LastProgressAt *time.Time `json:"last_progress_at,omitempty"`
	TargetPath     string     `json:"target_path"`
}

// IsStale reports whether an active session has made no progress within d.
func (s *ImportSession) IsStale(now time.Time, d time.Duration) bool {
	if !s.Active {
		return false
	}
	if s.LastProgressAt == nil {
		return true
	}
	return now.Sub(*s.LastProgressAt) > d
}
