package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/importers"
)

// BatchRunner runs one batch of an import. Implemented by
// importers.PhotosImporter and importers.DriveImporter.
type BatchRunner interface {
	RunBatch(ctx context.Context, userID string) (*importers.BatchResult, error)
}

const (
	// BatchTimeout bounds one batch, stalled downloads included.
	BatchTimeout = 30 * time.Minute

	batchRetention = 24 * time.Hour
)

// batchQueueConfig is shared by the import queues. Batches are never
// retried: a failed batch has already cleared its session.
func batchQueueConfig(name string) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: 1,
		Timeout:     BatchTimeout,
		Retention: &backlite.Retention{
			Duration:   batchRetention,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportPhotosTask runs one Photos import batch for a user.
type ImportPhotosTask struct {
	UserID string `json:"user_id"`
}

// Config returns the queue configuration for Photos import batches.
func (t ImportPhotosTask) Config() backlite.QueueConfig {
	return batchQueueConfig("import_photos")
}

// ImportDriveTask runs one Drive import batch for a user.
type ImportDriveTask struct {
	UserID string `json:"user_id"`
}

// Config returns the queue configuration for Drive import batches.
func (t ImportDriveTask) Config() backlite.QueueConfig {
	return batchQueueConfig("import_drive")
}

// BatchTask returns the task running one batch of domain for userID.
func BatchTask(domain entities.ImportDomain, userID string) (backlite.Task, error) {
	switch domain {
	case entities.ImportDomainPhotos:
		return ImportPhotosTask{UserID: userID}, nil
	case entities.ImportDomainDrive:
		return ImportDriveTask{UserID: userID}, nil
	default:
		return nil, fmt.Errorf("no batch task for import domain %q", domain)
	}
}

func runBatch(ctx context.Context, runner BatchRunner, domain entities.ImportDomain, userID string) error {
	if runner == nil {
		return fmt.Errorf("%s importer not configured", domain)
	}

	result, err := runner.RunBatch(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s batch for user %s: %w", domain, userID, err)
	}

	switch {
	case result.Idle:
		log.Printf("[TASK] No active %s import for user %s", domain, userID)
	case result.Finished:
		log.Printf("[TASK] %s import finished for user %s", domain, userID)
	default:
		log.Printf("[TASK] %s batch for user %s imported %d items (%d bytes)",
			domain, userID, result.Progress.Items, result.Progress.Bytes)
	}
	return nil
}

// ImportPhotosProcessor creates a processor function for ImportPhotosTask.
func ImportPhotosProcessor(runner BatchRunner) backlite.QueueProcessor[ImportPhotosTask] {
	return func(ctx context.Context, task ImportPhotosTask) error {
		return runBatch(ctx, runner, entities.ImportDomainPhotos, task.UserID)
	}
}

// ImportDriveProcessor creates a processor function for ImportDriveTask.
func ImportDriveProcessor(runner BatchRunner) backlite.QueueProcessor[ImportDriveTask] {
	return func(ctx context.Context, task ImportDriveTask) error {
		return runBatch(ctx, runner, entities.ImportDomainDrive, task.UserID)
	}
}

// NewImportPhotosQueue creates a backlite queue for Photos import batches.
func NewImportPhotosQueue(runner BatchRunner) backlite.Queue {
	return backlite.NewQueue(ImportPhotosProcessor(runner))
}

// NewImportDriveQueue creates a backlite queue for Drive import batches.
func NewImportDriveQueue(runner BatchRunner) backlite.Queue {
	return backlite.NewQueue(ImportDriveProcessor(runner))
}
