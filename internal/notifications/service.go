// Package notifications records user-facing events such as a finished
// import. Sending never blocks the caller.
package notifications

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/google-importer/internal/database/notifications"
	"github.com/mrlokans/google-importer/internal/entities"
)

// Sender is the notification sink used by the importers.
type Sender interface {
	Send(userID string, eventType entities.NotificationType, params map[string]any)
}

// Service persists notifications in the background.
type Service struct {
	repo *notifications.Repository
	wg   sync.WaitGroup
}

// NewService creates a new notification service.
func NewService(repo *notifications.Repository) *Service {
	return &Service{repo: repo}
}

// Send records a notification in the background (non-blocking).
func (s *Service) Send(userID string, eventType entities.NotificationType, params map[string]any) {
	n := &entities.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      eventType,
		CreatedAt: time.Now(),
	}
	if len(params) > 0 {
		if data, err := json.Marshal(params); err == nil {
			n.Params = string(data)
		}
	}

	log.Printf("Notification: %s for user %s %s", eventType, userID, n.Params)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.Create(n); err != nil {
			log.Printf("Failed to store notification: %v", err)
		}
	}()
}

// Wait blocks until pending notifications are stored.
func (s *Service) Wait() {
	s.wg.Wait()
}

// List returns the most recent notifications of a user.
func (s *Service) List(userID string, limit int) ([]entities.Notification, error) {
	return s.repo.ListForUser(userID, limit)
}

// DeleteOld removes notifications older than the retention period.
func (s *Service) DeleteOld(retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(time.Now().Add(-retention))
}
