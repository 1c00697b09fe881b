package entities

import "time"

type NotificationType string

const (
	NotificationImportPhotosFinished NotificationType = "import_photos_finished"
	NotificationImportDriveFinished  NotificationType = "import_drive_finished"
)

type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"size:64;index" json:"user_id"`
	Type      NotificationType `gorm:"index;size:50" json:"type"`
	Params    string           `gorm:"type:text" json:"params,omitempty"` // JSON object
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
