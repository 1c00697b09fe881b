package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/google-importer/internal/entities"
)

// ErrNoImporter is returned when a batch is scheduled for a domain whose
// importer was never registered.
var ErrNoImporter = errors.New("no importer registered for domain")

// Client queues import batches in a dedicated SQLite database and runs them
// on a fixed pool of workers.
type Client struct {
	queue  *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.Mutex
	started bool
	domains map[entities.ImportDomain]bool
}

// tasksDBPath places the queue next to the main database:
// data/importer.db becomes data/importer-tasks.db.
func tasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", tasksDBPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	// Every worker holds a connection while it runs a batch; the rest serve
	// enqueues from request handlers and the watchdog.
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &stdLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{
		queue:   queue,
		db:      db,
		config:  cfg,
		domains: make(map[entities.ImportDomain]bool),
	}, nil
}

// RegisterImporters attaches the batch runners of the Photos and Drive
// imports. A nil runner leaves its domain unregistered. Must be called
// before Start.
func (c *Client) RegisterImporters(photos, drive BatchRunner) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if photos != nil {
		c.queue.Register(NewImportPhotosQueue(photos))
		c.domains[entities.ImportDomainPhotos] = true
	}
	if drive != nil {
		c.queue.Register(NewImportDriveQueue(drive))
		c.domains[entities.ImportDomainDrive] = true
	}
}

// Start runs queued batches until ctx is done or Stop is called. Queued
// batches left over from a previous run are picked up.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	log.Printf("Import queue started with %d workers", c.config.Workers)
	c.queue.Start(ctx)
}

// Stop waits for running batches. It returns false when ctx expired first;
// those batches are released to a worker after ReleaseAfter on next start.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return true
	}

	log.Println("Stopping import queue...")
	if !c.queue.Stop(ctx) {
		log.Println("Import queue stopped before running batches completed")
		return false
	}
	log.Println("Import queue stopped")
	return true
}

// Close releases the tasks database. Call after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue adds a single task and returns its id.
func (c *Client) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	ids, err := c.queue.Add(task).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", task.Config().Name, err)
	}
	return ids[0], nil
}

// ScheduleBatch queues the next batch of a user's import.
func (c *Client) ScheduleBatch(ctx context.Context, domain entities.ImportDomain, userID string) error {
	c.mu.Lock()
	registered := c.domains[domain]
	c.mu.Unlock()
	if !registered {
		return fmt.Errorf("%w %q", ErrNoImporter, domain)
	}

	task, err := BatchTask(domain, userID)
	if err != nil {
		return err
	}
	id, err := c.Enqueue(ctx, task)
	if err != nil {
		return err
	}
	log.Printf("[TASK] Queued %s batch %s for user %s", domain, id, userID)
	return nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// Ping checks the tasks database connection.
func (c *Client) Ping() error {
	return c.db.Ping()
}

// stdLogger implements backlite.Logger using standard library log.
type stdLogger struct{}

func (l *stdLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (l *stdLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
