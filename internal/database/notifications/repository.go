package notifications

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/google-importer/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a notification.
func (r *Repository) Create(n *entities.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return r.db.Create(n).Error
}

// ListForUser returns a user's notifications, most recent first.
func (r *Repository) ListForUser(userID string, limit int) ([]entities.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var result []entities.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&result).Error
	return result, err
}

// DeleteOlderThan removes notifications created before cutoff.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.Notification{})
	return result.RowsAffected, result.Error
}
