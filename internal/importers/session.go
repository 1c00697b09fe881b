package importers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/notifications"
	"github.com/mrlokans/google-importer/internal/settingsstore"
	"github.com/mrlokans/google-importer/internal/storage"
)

// APIClient is the part of google.Client the importers use.
type APIClient interface {
	google.Requester
	Download(ctx context.Context, userID, url string, w io.Writer) (int64, error)
}

// Settings is the per-user state the batched importers read and write.
type Settings interface {
	GetSession(userID string, domain entities.ImportDomain) (entities.ImportSession, error)
	SaveSession(userID string, domain entities.ImportDomain, session entities.ImportSession) error
	ClearSession(userID string, domain entities.ImportDomain) error
	GetImportPreferences(userID string) settingsstore.ImportPreferences
}

// BatchScheduler queues the next batch of an import.
type BatchScheduler interface {
	ScheduleBatch(ctx context.Context, domain entities.ImportDomain, userID string) error
}

// Endpoints are the Google hosts the importers talk to. Drive and Calendar
// live on the default API host.
type Endpoints struct {
	API    string
	People string
	Photos string
}

// Deps are shared by every importer.
type Deps struct {
	Client      APIClient
	Settings    Settings
	Files       storage.Provider
	Scheduler   BatchScheduler
	Notifier    notifications.Sender
	Endpoints   Endpoints
	BatchBudget int64
}

// StartResult is returned by StartImport.
type StartResult struct {
	TargetPath string `json:"targetPath"`
}

// BatchResult describes one finished batch.
type BatchResult struct {
	// Idle is set when no session was active and nothing was done.
	Idle     bool     `json:"idle"`
	Finished bool     `json:"finished"`
	Progress Progress `json:"progress"`
}

// ImportInfo is the user-visible state of a batched import.
type ImportInfo struct {
	Active         bool       `json:"active"`
	ImportedCount  int64      `json:"importedCount"`
	ImportedBytes  int64      `json:"importedBytes"`
	LastProgressAt *time.Time `json:"lastProgressAt,omitempty"`
	TargetPath     string     `json:"targetPath,omitempty"`
}

// batchFunc runs one sweep into root on sink. It returns true when the
// import is complete.
type batchFunc func(ctx context.Context, userID string, sink storage.FileSink, root string, b budget) (bool, error)

// batchEngine owns the session lifecycle shared by Photos and Drive.
type batchEngine struct {
	Deps

	domain       entities.ImportDomain
	label        string
	notification entities.NotificationType
	folder       func(prefs settingsstore.ImportPreferences) string
	run          batchFunc
	now          func() time.Time
}

// StartImport begins an import unless one is already active, in which case
// it returns the running import's target path and changes nothing.
func (e *batchEngine) StartImport(ctx context.Context, userID string) (*StartResult, error) {
	session, err := e.Settings.GetSession(userID, e.domain)
	if err != nil {
		return nil, err
	}
	if session.Active {
		return &StartResult{TargetPath: session.TargetPath}, nil
	}

	root := e.folder(e.Settings.GetImportPreferences(userID))
	sink, err := e.Files.ForUser(userID)
	if err != nil {
		return nil, err
	}
	if err := createFolder(ctx, sink, root); err != nil {
		return nil, err
	}

	now := e.now()
	session = entities.ImportSession{
		Active:         true,
		TargetPath:     root,
		LastProgressAt: &now,
	}
	if err := e.Settings.SaveSession(userID, e.domain, session); err != nil {
		return nil, err
	}

	if err := e.Scheduler.ScheduleBatch(ctx, e.domain, userID); err != nil {
		_ = e.Settings.ClearSession(userID, e.domain)
		return nil, fmt.Errorf("failed to schedule %s import: %w", e.domain, err)
	}

	log.Printf("%s import: started for user %s into %s", e.label, userID, root)
	return &StartResult{TargetPath: root}, nil
}

// RunBatch performs one batch of the active import. Without an active
// session it does nothing. Errors abort the import and clear its session.
func (e *batchEngine) RunBatch(ctx context.Context, userID string) (*BatchResult, error) {
	session, err := e.Settings.GetSession(userID, e.domain)
	if err != nil {
		return nil, err
	}
	if !session.Active {
		log.Printf("%s import: no active session for user %s, skipping batch", e.label, userID)
		return &BatchResult{Idle: true}, nil
	}

	progress := &Progress{}
	finished, err := e.runSweep(ctx, userID, session.TargetPath, progress)
	result := &BatchResult{Finished: finished, Progress: *progress}
	if err != nil {
		log.Printf("%s import: aborted for user %s: %v", e.label, userID, err)
		if clearErr := e.Settings.ClearSession(userID, e.domain); clearErr != nil {
			log.Printf("%s import: failed to clear session for user %s: %v", e.label, userID, clearErr)
		}
		return result, err
	}

	// A cancel during the batch wins over the progress made by it.
	current, err := e.Settings.GetSession(userID, e.domain)
	if err != nil {
		return result, err
	}
	if !current.Active {
		log.Printf("%s import: cancelled for user %s during batch", e.label, userID)
		return result, nil
	}

	imported := current.ImportedCount + progress.Items
	if finished {
		if err := e.Settings.ClearSession(userID, e.domain); err != nil {
			return result, err
		}
		log.Printf("%s import: finished for user %s, %d items", e.label, userID, imported)
		e.Notifier.Send(userID, e.notification, map[string]any{
			"nbImported": imported,
			"targetPath": current.TargetPath,
		})
		return result, nil
	}

	now := e.now()
	current.ImportedCount = imported
	current.ImportedBytes += progress.Bytes
	current.LastProgressAt = &now
	if err := e.Settings.SaveSession(userID, e.domain, current); err != nil {
		return result, err
	}

	log.Printf("%s import: batch done for user %s, %d items (%d bytes), %d skipped, %d failed",
		e.label, userID, progress.Items, progress.Bytes, progress.Skipped, progress.Failed)

	if err := e.Scheduler.ScheduleBatch(ctx, e.domain, userID); err != nil {
		return result, fmt.Errorf("failed to schedule next %s batch: %w", e.domain, err)
	}
	return result, nil
}

func (e *batchEngine) runSweep(ctx context.Context, userID, root string, progress *Progress) (bool, error) {
	sink, err := e.Files.ForUser(userID)
	if err != nil {
		return false, err
	}
	if err := createFolder(ctx, sink, root); err != nil {
		return false, err
	}
	return e.run(ctx, userID, sink, root, budget{limit: e.BatchBudget, progress: progress})
}

// Info returns the state of the user's import.
func (e *batchEngine) Info(userID string) (*ImportInfo, error) {
	session, err := e.Settings.GetSession(userID, e.domain)
	if err != nil {
		return nil, err
	}
	return &ImportInfo{
		Active:         session.Active,
		ImportedCount:  session.ImportedCount,
		ImportedBytes:  session.ImportedBytes,
		LastProgressAt: session.LastProgressAt,
		TargetPath:     session.TargetPath,
	}, nil
}

// Cancel clears the session. A batch in flight finishes its current item
// and exits at its next checkpoint; queued batches do nothing.
func (e *batchEngine) Cancel(userID string) error {
	if err := e.Settings.ClearSession(userID, e.domain); err != nil {
		return err
	}
	log.Printf("%s import: cancelled for user %s", e.label, userID)
	return nil
}

func createFolder(ctx context.Context, sink storage.FileSink, path string) error {
	err := sink.CreateFolder(ctx, path)
	if errors.Is(err, storage.ErrNotDirectory) {
		return &FolderCreationConflictError{Path: path, Err: err}
	}
	return err
}

// downloadItem writes one remote item to path unless a file with that name
// already exists. It reports whether bytes were written.
func downloadItem(ctx context.Context, client APIClient, sink storage.FileSink, userID, url, path string, b budget) (bool, error) {
	exists, err := sink.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	if exists {
		b.progress.Skip()
		return false, nil
	}
	if b.exhausted() {
		return false, errBudgetReached
	}

	n, err := storage.WriteFile(ctx, sink, path, func(w io.Writer) (int64, error) {
		return client.Download(ctx, userID, url, w)
	})
	if err != nil {
		if isFatal(ctx, err) {
			return false, err
		}
		log.Printf("Import: failed to download %s: %v", path, err)
		b.progress.Fail()
		return false, nil
	}

	b.progress.Imported(n)
	return true, nil
}
