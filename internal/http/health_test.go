package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/settingsstore"
)

func setupHealthTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	return db
}

func getHealth(t *testing.T, controller *HealthController) (int, HealthResponse) {
	t.Helper()

	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupHealthTestDB(t)
		defer db.Close()

		code, response := getHealth(t, NewHealthController(db, "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("database not configured", func(t *testing.T) {
		code, response := getHealth(t, NewHealthController(nil, "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.NotContains(t, response.Checks, "database")
		assert.Nil(t, response.ActiveImports)
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupHealthTestDB(t)
		db.Close()

		code, response := getHealth(t, NewHealthController(db, "1.0.0"))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})

	t.Run("extra checks", func(t *testing.T) {
		controller := NewHealthController(nil, "")
		controller.AddCheck("tasks", func() error { return nil })

		code, response := getHealth(t, controller)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", response.Checks["tasks"])

		controller.AddCheck("tasks", func() error { return errors.New("database is closed") })
		code, response = getHealth(t, controller)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "error: database is closed", response.Checks["tasks"])
	})
}

type fakeSessions struct {
	active map[entities.ImportDomain][]settingsstore.UserSession
	err    error
}

func (f fakeSessions) ListActiveSessions(domain entities.ImportDomain) ([]settingsstore.UserSession, error) {
	return f.active[domain], f.err
}

func TestHealthController_ActiveImports(t *testing.T) {
	t.Run("counts sessions per domain", func(t *testing.T) {
		sessions := fakeSessions{active: map[entities.ImportDomain][]settingsstore.UserSession{
			entities.ImportDomainPhotos: {{UserID: "alice"}, {UserID: "bob"}},
		}}

		code, response := getHealth(t, NewHealthController(nil, "").WithSessions(sessions))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, response.ActiveImports[entities.ImportDomainPhotos])
		assert.Equal(t, 0, response.ActiveImports[entities.ImportDomainDrive])
	})

	t.Run("listing failure is unhealthy", func(t *testing.T) {
		sessions := fakeSessions{err: errors.New("no such table: settings")}

		code, response := getHealth(t, NewHealthController(nil, "").WithSessions(sessions))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Contains(t, response.Checks["sessions"], "no such table")
	})
}

func TestHealthResponse_OmitsEmptyVersion(t *testing.T) {
	response := HealthResponse{
		Status: "healthy",
		Time:   "2024-01-01T12:00:00Z",
		Checks: map[string]string{},
	}

	jsonBytes, err := json.Marshal(response)
	require.NoError(t, err)

	assert.NotContains(t, string(jsonBytes), "version")
	assert.NotContains(t, string(jsonBytes), "activeImports")
}
