package calendars

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "calendars.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_Calendars(t *testing.T) {
	repo := setupTestRepo(t)

	missing, err := repo.GetCalendarByURI("alice", "work-calendar-import")
	require.NoError(t, err)
	assert.Nil(t, missing)

	cal, err := repo.CreateCalendar("alice", "work-calendar-import", "Work (Calendar import)", "#0000ff")
	require.NoError(t, err)

	found, err := repo.GetCalendarByURI("alice", "work-calendar-import")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cal.ID, found.ID)
	assert.Equal(t, "#0000ff", found.Color)
}

func TestRepository_CreateCalendarObject_DuplicateUID(t *testing.T) {
	repo := setupTestRepo(t)

	cal, err := repo.CreateCalendar("alice", "c", "C", "")
	require.NoError(t, err)

	first := &entities.CalendarObject{CalendarID: cal.ID, URI: "x.ics", UID: "x", Data: "BEGIN:VCALENDAR"}
	require.NoError(t, repo.CreateCalendarObject(first))

	again := &entities.CalendarObject{CalendarID: cal.ID, URI: "x.ics", UID: "x", Data: "BEGIN:VCALENDAR"}
	assert.ErrorIs(t, repo.CreateCalendarObject(again), database.ErrDuplicateObject)

	other, err := repo.CreateCalendar("alice", "d", "D", "")
	require.NoError(t, err)
	elsewhere := &entities.CalendarObject{CalendarID: other.ID, URI: "x.ics", UID: "x"}
	assert.NoError(t, repo.CreateCalendarObject(elsewhere), "uniqueness is per calendar")

	count, err := repo.CountObjects(cal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
