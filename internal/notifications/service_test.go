package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	notificationsRepo "github.com/mrlokans/google-importer/internal/database/notifications"
	"github.com/mrlokans/google-importer/internal/entities"
)

func setupTestService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory db.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entities.Notification{}))
	return NewService(notificationsRepo.NewRepository(db))
}

func TestService_Send(t *testing.T) {
	svc := setupTestService(t)

	svc.Send("alice", entities.NotificationImportPhotosFinished, map[string]any{
		"nbImported": 12,
		"targetPath": "Google Photos",
	})
	svc.Wait()

	list, err := svc.List("alice", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	n := list[0]
	assert.Len(t, n.ID, 36)
	assert.Equal(t, entities.NotificationImportPhotosFinished, n.Type)

	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(n.Params), &params))
	assert.Equal(t, float64(12), params["nbImported"])
	assert.Equal(t, "Google Photos", params["targetPath"])
}

func TestService_ListIsPerUser(t *testing.T) {
	svc := setupTestService(t)

	svc.Send("alice", entities.NotificationImportDriveFinished, nil)
	svc.Send("bob", entities.NotificationImportDriveFinished, nil)
	svc.Wait()

	list, err := svc.List("bob", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].UserID)
	assert.Empty(t, list[0].Params)
}

func TestService_DeleteOld(t *testing.T) {
	svc := setupTestService(t)

	require.NoError(t, svc.repo.Create(&entities.Notification{
		ID: "old", UserID: "alice", Type: entities.NotificationImportDriveFinished,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	svc.Send("alice", entities.NotificationImportDriveFinished, nil)
	svc.Wait()

	deleted, err := svc.DeleteOld(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	list, err := svc.List("alice", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
