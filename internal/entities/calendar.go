package entities

import "time"

// Calendar is a local calendar collection owned by a user.
type Calendar struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;uniqueIndex:idx_calendar_uri" json:"user_id"`
	URI         string    `gorm:"size:255;uniqueIndex:idx_calendar_uri" json:"uri"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Color       string    `gorm:"size:16" json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Calendar) TableName() string {
	return "calendars"
}

// CalendarObject is a stored iCalendar document holding one event.
type CalendarObject struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CalendarID uint      `gorm:"not null;uniqueIndex:idx_calobj_uri;uniqueIndex:idx_calobj_uid" json:"calendar_id"`
	URI        string    `gorm:"size:255;not null;uniqueIndex:idx_calobj_uri" json:"uri"`
	UID        string    `gorm:"size:255;not null;uniqueIndex:idx_calobj_uid" json:"uid"`
	Data       string    `gorm:"type:text" json:"-"`
	ETag       string    `gorm:"size:64" json:"etag"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (CalendarObject) TableName() string {
	return "calendar_objects"
}
