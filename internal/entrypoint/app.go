package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/database/calendars"
	"github.com/mrlokans/google-importer/internal/database/contacts"
	notificationsrepo "github.com/mrlokans/google-importer/internal/database/notifications"
	"github.com/mrlokans/google-importer/internal/database/settings"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/importers"
	"github.com/mrlokans/google-importer/internal/notifications"
	"github.com/mrlokans/google-importer/internal/oauth2"
	"github.com/mrlokans/google-importer/internal/oauth2/providers"
	"github.com/mrlokans/google-importer/internal/settingsstore"
	"github.com/mrlokans/google-importer/internal/storage/providers/local"
	"github.com/mrlokans/google-importer/internal/tasks"
	"github.com/mrlokans/google-importer/internal/tokenstore"
)

// errTasksDisabled is returned when a batched import is started while the
// task queue is turned off.
var errTasksDisabled = errors.New("task queue is disabled, batched imports are unavailable")

type disabledScheduler struct{}

func (disabledScheduler) ScheduleBatch(ctx context.Context, domain entities.ImportDomain, userID string) error {
	return errTasksDisabled
}

// App holds every long-lived dependency, shared by the server and the CLI.
type App struct {
	Config *config.Config

	DB            *database.Database
	Settings      *settingsstore.SettingsStore
	Tokens        *tokenstore.TokenStore
	Credentials   *oauth2.StoredCredentials
	Flow          *oauth2.FlowHandler
	Client        *google.Client
	Notifications *notifications.Service
	Calendars     *calendars.Repository
	Contacts      *contacts.Repository

	Photos           *importers.PhotosImporter
	Drive            *importers.DriveImporter
	CalendarImporter *importers.CalendarImporter
	ContactsImporter *importers.ContactsImporter

	// Tasks is nil when the task queue is disabled.
	Tasks *tasks.Client
}

// NewApp opens the databases and wires the importers. Queues are
// registered but not started.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{Config: cfg, DB: db}

	app.Settings = settingsstore.New(settings.NewRepository(db.DB), cfg)

	app.Tokens, err = tokenstore.New(tokenstore.Config{
		DatabasePath:  cfg.Database.Path,
		EncryptionKey: cfg.Security.TokenEncryptionKey,
		KeyFilePath:   cfg.Security.KeyFilePath,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize token store: %w", err)
	}

	provider := providers.NewGoogleProvider(providers.GoogleConfig{
		AuthURL:  cfg.Google.AuthURL,
		TokenURL: cfg.Google.TokenURL,
		Credentials: func() (string, string) {
			creds := app.Settings.GetClientCredentials()
			return creds.ClientID, creds.ClientSecret
		},
	})
	app.Credentials = oauth2.NewStoredCredentials(provider, app.Tokens)
	app.Flow = oauth2.NewFlowHandler(provider, app.Tokens)

	app.Client = google.NewClient(app.Credentials, google.Config{
		BaseURL:               trimBase(cfg.Google.APIBaseURL),
		RequestsPerSecond:     cfg.Google.RequestsPerSecond,
		ResponseHeaderTimeout: cfg.Google.ResponseHeaderTimeout,
	})

	app.Notifications = notifications.NewService(notificationsrepo.NewRepository(db.DB))
	app.Calendars = calendars.NewRepository(db.DB)
	app.Contacts = contacts.NewRepository(db.DB)

	var scheduler importers.BatchScheduler = disabledScheduler{}
	if cfg.Tasks.Enabled {
		app.Tasks, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		scheduler = app.Tasks
	}

	endpoints := importers.Endpoints{
		API:    trimBase(cfg.Google.APIBaseURL),
		People: trimBase(cfg.Google.PeopleBaseURL),
		Photos: trimBase(cfg.Google.PhotosBaseURL),
	}
	deps := importers.Deps{
		Client:      app.Client,
		Settings:    app.Settings,
		Files:       local.NewOSProvider(cfg.Storage.DataDir),
		Scheduler:   scheduler,
		Notifier:    app.Notifications,
		Endpoints:   endpoints,
		BatchBudget: cfg.Import.BatchBudgetBytes,
	}
	app.Photos = importers.NewPhotosImporter(deps)
	app.Drive = importers.NewDriveImporter(deps)
	app.CalendarImporter = importers.NewCalendarImporter(app.Client, app.Calendars)
	app.ContactsImporter = importers.NewContactsImporter(app.Client, app.Contacts, endpoints.People)

	if app.Tasks != nil {
		app.Tasks.RegisterImporters(app.Photos, app.Drive)
	}

	if !app.Settings.GetClientCredentials().Configured() {
		log.Printf("WARNING: Google OAuth client is not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET to connect accounts.")
	}

	return app, nil
}

// Close waits for pending notifications and releases the databases.
func (a *App) Close() {
	if a.Notifications != nil {
		a.Notifications.Wait()
	}
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if a.Tokens != nil {
		if err := a.Tokens.Close(); err != nil {
			log.Printf("Error closing token store: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func trimBase(u string) string {
	return strings.TrimRight(u, "/")
}
