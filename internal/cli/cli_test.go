package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/database/settings"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/settingsstore"
)

func TestGoogleAuthCommand_ParseFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewGoogleAuthCommand()
		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, config.DefaultUserID, cmd.UserID)
		assert.Equal(t, 8089, cmd.Port)
		assert.Equal(t, 5*time.Minute, cmd.Timeout)
	})

	t.Run("custom user and port", func(t *testing.T) {
		cmd := NewGoogleAuthCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-user", "alice", "-port", "9000"}))
		assert.Equal(t, "alice", cmd.UserID)
		assert.Equal(t, 9000, cmd.Port)
	})

	t.Run("invalid port", func(t *testing.T) {
		assert.Error(t, NewGoogleAuthCommand().ParseFlags([]string{"-port", "70000"}))
	})

	t.Run("empty user", func(t *testing.T) {
		assert.Error(t, NewGoogleAuthCommand().ParseFlags([]string{"-user", ""}))
	})

	t.Run("client id without secret", func(t *testing.T) {
		assert.Error(t, NewGoogleAuthCommand().ParseFlags([]string{"-client-id", "id"}))
	})

	t.Run("client credentials", func(t *testing.T) {
		cmd := NewGoogleAuthCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-client-id", "id", "-client-secret", "secret"}))
		assert.Equal(t, "id", cmd.ClientID)
		assert.Equal(t, "secret", cmd.ClientSecret)
	})
}

func TestGoogleAuthCommand_EnsureClientCredentials(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{Google: config.Google{ClientID: "env-id", ClientSecret: "env-secret"}}
	store := settingsstore.New(settings.NewRepository(db.DB), cfg)

	cmd := NewGoogleAuthCommand()
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.ensureClientCredentials(store))
	assert.Equal(t, "environment", store.GetClientCredentials().Source)

	require.NoError(t, cmd.ParseFlags([]string{"-client-id", "db-id", "-client-secret", "db-secret"}))
	require.NoError(t, cmd.ensureClientCredentials(store))

	creds := store.GetClientCredentials()
	assert.Equal(t, "database", creds.Source)
	assert.Equal(t, "db-id", creds.ClientID)
	assert.Equal(t, "db-secret", creds.ClientSecret)
}

func TestGoogleAuthCommand_EnsureClientCredentials_Unconfigured(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	defer db.Close()

	store := settingsstore.New(settings.NewRepository(db.DB), &config.Config{})

	cmd := NewGoogleAuthCommand()
	require.NoError(t, cmd.ParseFlags(nil))
	assert.ErrorContains(t, cmd.ensureClientCredentials(store), "not configured")
}

func TestImportContactsCommand_ParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"no target", nil, true},
		{"uri", []string{"-uri", "google", "-name", "Google"}, false},
		{"key", []string{"-key", "3"}, false},
		{"count only", []string{"-count"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewImportContactsCommand().ParseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImportCalendarCommand_ParseFlags(t *testing.T) {
	cmd := NewImportCalendarCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-calendar", "primary", "-color", "#fff", "-db", "/tmp/x.db"}))
	assert.Equal(t, "primary", cmd.CalendarID)
	assert.Equal(t, "#fff", cmd.Color)
	assert.Equal(t, "/tmp/x.db", cmd.DatabasePath)
}

func TestImportFilesCommand_ParseFlags(t *testing.T) {
	cmd := NewImportFilesCommand(entities.ImportDomainDrive)
	assert.Equal(t, "import-drive", cmd.name())

	require.NoError(t, cmd.ParseFlags([]string{"-poll", "5s"}))
	assert.Equal(t, 5*time.Second, cmd.PollInterval)

	assert.Error(t, NewImportFilesCommand(entities.ImportDomainPhotos).ParseFlags([]string{"-poll", "0s"}))
}

func TestImportStatusCommand_ParseFlags(t *testing.T) {
	cmd := NewImportStatusCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-limit", "2"}))
	assert.Equal(t, 2, cmd.Limit)
}
