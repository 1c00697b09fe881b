package tasks

import (
	"fmt"
	"time"
)

// Config holds configuration for the import task queue.
type Config struct {
	// Workers bounds how many import batches run at once across all users.
	Workers int

	// ReleaseAfter hands a claimed batch to another worker when its worker
	// disappeared. It has to outlive BatchTimeout or a slow batch would run
	// twice.
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished batches past their retention
	// are purged.
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    45 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("task workers must be at least 1, got %d", c.Workers)
	}
	if c.ReleaseAfter <= BatchTimeout {
		return fmt.Errorf("task release delay %s must exceed the batch timeout %s", c.ReleaseAfter, BatchTimeout)
	}
	return nil
}
