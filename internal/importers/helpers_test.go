package importers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/database/settings"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/settingsstore"
	"github.com/mrlokans/google-importer/internal/storage/providers/local"
)

const testUser = "alice"

type staticCredentials struct{}

func (staticCredentials) AccessToken(ctx context.Context, userID string) (string, error) {
	return "token", nil
}

func (staticCredentials) Refresh(ctx context.Context, userID string) (string, error) {
	return "token", nil
}

type scheduledBatch struct {
	Domain entities.ImportDomain
	UserID string
}

type recordingScheduler struct {
	mu    sync.Mutex
	calls []scheduledBatch
}

func (s *recordingScheduler) ScheduleBatch(ctx context.Context, domain entities.ImportDomain, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduledBatch{Domain: domain, UserID: userID})
	return nil
}

func (s *recordingScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type sentNotification struct {
	UserID string
	Type   entities.NotificationType
	Params map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Send(userID string, eventType entities.NotificationType, params map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: eventType, Params: params})
}

// fakeGoogle serves canned API answers and binary content, counting
// downloads per path.
type fakeGoogle struct {
	server *httptest.Server

	mu        sync.Mutex
	handlers  map[string]http.HandlerFunc
	content   map[string]string
	downloads map[string]int
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	f := &fakeGoogle{
		handlers:  make(map[string]http.HandlerFunc),
		content:   make(map[string]string),
		downloads: make(map[string]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGoogle) URL() string {
	return f.server.URL
}

// handle registers a handler for "METHOD /path".
func (f *fakeGoogle) handle(pattern string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[pattern] = h
}

// json registers a fixed JSON answer for "METHOD /path".
func (f *fakeGoogle) json(pattern string, body any) {
	f.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, body)
	})
}

// file registers downloadable content at path.
func (f *fakeGoogle) file(path, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[path] = data
}

func (f *fakeGoogle) downloadCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads[path]
}

func (f *fakeGoogle) totalDownloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.downloads {
		total += n
	}
	return total
}

func (f *fakeGoogle) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	h, ok := f.handlers[r.Method+" "+r.URL.Path]
	data, isFile := f.content[r.URL.Path]
	if isFile {
		f.downloads[r.URL.Path]++
	}
	f.mu.Unlock()

	switch {
	case ok:
		h(w, r)
	case isFile:
		_, _ = w.Write([]byte(data))
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found: ` + r.URL.Path + `"}}`))
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": message}})
}

type testEnv struct {
	google    *fakeGoogle
	db        *database.Database
	settings  *settingsstore.SettingsStore
	fs        afero.Fs
	scheduler *recordingScheduler
	notifier  *recordingNotifier
	deps      Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Import: config.Import{
			PhotosFolder:   "Google Photos",
			DriveFolder:    "Google Drive",
			DocumentFormat: config.DocumentFormatOpenXML,
		},
	}
	store := settingsstore.New(settings.NewRepository(db.DB), cfg)

	fg := newFakeGoogle(t)
	fs := afero.NewMemMapFs()
	scheduler := &recordingScheduler{}
	notifier := &recordingNotifier{}

	client := google.NewClient(staticCredentials{}, google.Config{BaseURL: fg.URL()})

	return &testEnv{
		google:    fg,
		db:        db,
		settings:  store,
		fs:        fs,
		scheduler: scheduler,
		notifier:  notifier,
		deps: Deps{
			Client:    client,
			Settings:  store,
			Files:     local.NewProvider(fs, "/data"),
			Scheduler: scheduler,
			Notifier:  notifier,
			Endpoints: Endpoints{
				API:    fg.URL(),
				People: fg.URL(),
				Photos: fg.URL(),
			},
			BatchBudget: 1000,
		},
	}
}

// localPath maps a sink path of the test user onto the memory filesystem.
func localPath(p string) string {
	return "/data/" + testUser + "/files/" + strings.TrimPrefix(p, "/")
}

func (e *testEnv) readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := afero.ReadFile(e.fs, localPath(p))
	require.NoError(t, err)
	return string(data)
}

func (e *testEnv) exists(t *testing.T, p string) bool {
	t.Helper()
	ok, err := afero.Exists(e.fs, localPath(p))
	require.NoError(t, err)
	return ok
}
