package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/google-importer/internal/settingsstore"
)

// NotificationPruner is implemented by notifications.Service.
type NotificationPruner interface {
	DeleteOld(retention time.Duration) (int64, error)
}

type CleanupConfig struct {
	Schedule  string
	Retention time.Duration
}

// NotificationCleanup periodically deletes notifications past their
// retention period.
type NotificationCleanup struct {
	pruner NotificationPruner
	config CleanupConfig

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewNotificationCleanup(pruner NotificationPruner, cfg CleanupConfig) *NotificationCleanup {
	return &NotificationCleanup{
		pruner: pruner,
		config: cfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

func (n *NotificationCleanup) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isRunning {
		return nil
	}
	if n.config.Retention <= 0 {
		return fmt.Errorf("notification retention must be positive, got %v", n.config.Retention)
	}
	if err := settingsstore.ValidateCronSchedule(n.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", n.config.Schedule, err)
	}
	if _, err := n.cron.AddFunc(n.config.Schedule, func() { n.Run() }); err != nil {
		return fmt.Errorf("failed to schedule notification cleanup: %w", err)
	}

	n.cron.Start()
	n.isRunning = true
	log.Printf("Notification cleanup: started with schedule '%s', keeping %v", n.config.Schedule, n.config.Retention)

	go func() {
		<-ctx.Done()
		n.Stop()
	}()
	return nil
}

func (n *NotificationCleanup) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.isRunning {
		return
	}
	<-n.cron.Stop().Done()
	n.isRunning = false
}

// Run deletes expired notifications once and returns how many went.
func (n *NotificationCleanup) Run() int64 {
	deleted, err := n.pruner.DeleteOld(n.config.Retention)
	if err != nil {
		log.Printf("Notification cleanup: %v", err)
		return 0
	}
	if deleted > 0 {
		log.Printf("Notification cleanup: deleted %d notifications", deleted)
	}
	return deleted
}
