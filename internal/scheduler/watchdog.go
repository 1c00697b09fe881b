package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/settingsstore"
)

// SessionLister lists the active import sessions of a domain.
type SessionLister interface {
	ListActiveSessions(domain entities.ImportDomain) ([]settingsstore.UserSession, error)
}

// BatchScheduler queues one import batch.
type BatchScheduler interface {
	ScheduleBatch(ctx context.Context, domain entities.ImportDomain, userID string) error
}

// WatchdogConfig configures the stale-session watchdog.
type WatchdogConfig struct {
	Schedule   string
	StaleAfter time.Duration
}

// Watchdog re-queues batches for active imports whose chain of batches was
// lost, e.g. on a restart while a batch was pending.
type Watchdog struct {
	sessions  SessionLister
	scheduler BatchScheduler
	config    WatchdogConfig
	now       func() time.Time

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isChecking bool
}

func NewWatchdog(sessions SessionLister, scheduler BatchScheduler, cfg WatchdogConfig) *Watchdog {
	return &Watchdog{
		sessions:  sessions,
		scheduler: scheduler,
		config:    cfg,
		now:       time.Now,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the periodic check.
func (w *Watchdog) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(w.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", w.config.Schedule, err)
	}

	entryID, err := w.cron.AddFunc(w.config.Schedule, func() {
		w.Check(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule watchdog job: %w", err)
	}
	w.entryID = entryID

	w.cron.Start()
	w.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(w.config.Schedule)
	log.Printf("Import watchdog: started with schedule '%s', stale after %v. Next run: %v",
		w.config.Schedule, w.config.StaleAfter, nextRun)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

// Stop waits for a running check and stops the scheduler.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	ctx := w.cron.Stop()
	<-ctx.Done()

	w.isRunning = false
	log.Printf("Import watchdog: stopped")
}

func (w *Watchdog) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}

// Check queues one batch for every stale active session and returns how
// many were queued. Inactive sessions are never touched.
func (w *Watchdog) Check(ctx context.Context) int {
	w.mu.Lock()
	if w.isChecking {
		w.mu.Unlock()
		log.Printf("Import watchdog: skipped (already checking)")
		return 0
	}
	w.isChecking = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.isChecking = false
		w.mu.Unlock()
	}()

	now := w.now()
	queued := 0
	for _, domain := range []entities.ImportDomain{entities.ImportDomainPhotos, entities.ImportDomainDrive} {
		sessions, err := w.sessions.ListActiveSessions(domain)
		if err != nil {
			log.Printf("Import watchdog: %v", err)
			continue
		}

		for _, s := range sessions {
			if !s.Session.IsStale(now, w.config.StaleAfter) {
				continue
			}
			if err := w.scheduler.ScheduleBatch(ctx, domain, s.UserID); err != nil {
				log.Printf("Import watchdog: failed to resume %s import for user %s: %v", domain, s.UserID, err)
				continue
			}
			log.Printf("Import watchdog: resumed stale %s import for user %s", domain, s.UserID)
			queued++
		}
	}
	return queued
}
