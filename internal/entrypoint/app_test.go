package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/crypto"
	http_controllers "github.com/mrlokans/google-importer/internal/http"
)

func newTestConfig(t *testing.T, tasksEnabled bool) *config.Config {
	dir := t.TempDir()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(dir, "importer.db")
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Security.TokenEncryptionKey = key
	cfg.Tasks.Enabled = tasksEnabled
	return cfg
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(newTestConfig(t, true))
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Photos)
	assert.NotNil(t, app.Drive)
	assert.NotNil(t, app.CalendarImporter)
	assert.NotNil(t, app.ContactsImporter)
	require.NotNil(t, app.Tasks)
	assert.NoError(t, app.Tasks.Ping())

	connected, err := app.Credentials.IsConnected("alice")
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestNewApp_TasksDisabled(t *testing.T) {
	app, err := NewApp(newTestConfig(t, false))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Tasks)

	_, err = app.Photos.StartImport(context.Background(), "alice")
	assert.ErrorIs(t, err, errTasksDisabled)

	info, err := app.Photos.Info("alice")
	require.NoError(t, err)
	assert.False(t, info.Active, "a failed start leaves no session behind")
}

func TestNewApp_Router(t *testing.T) {
	app, err := NewApp(newTestConfig(t, false))
	require.NoError(t, err)
	defer app.Close()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:    app.DB,
		Photos:      app.Photos,
		DefaultUser: "alice",
		Version:     "test",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/google/photos/import", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}

func TestTrimBase(t *testing.T) {
	assert.Equal(t, "https://photoslibrary.googleapis.com", trimBase("https://photoslibrary.googleapis.com/"))
	assert.Equal(t, "http://127.0.0.1:8080", trimBase("http://127.0.0.1:8080"))
}
