// Package calendars stores calendars and their iCalendar objects.
package calendars

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetCalendarByURI returns the user's calendar with uri, or nil when none exists.
func (r *Repository) GetCalendarByURI(userID, uri string) (*entities.Calendar, error) {
	var cal entities.Calendar
	err := r.db.Where("user_id = ? AND uri = ?", userID, uri).First(&cal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

func (r *Repository) CreateCalendar(userID, uri, displayName, color string) (*entities.Calendar, error) {
	cal := &entities.Calendar{
		UserID:      userID,
		URI:         uri,
		DisplayName: displayName,
		Color:       color,
	}
	if err := r.db.Create(cal).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("calendar %q: %w", uri, database.ErrDuplicateObject)
		}
		return nil, err
	}
	return cal, nil
}

func (r *Repository) ListCalendars(userID string) ([]entities.Calendar, error) {
	var cals []entities.Calendar
	err := r.db.Where("user_id = ?", userID).Order("display_name ASC").Find(&cals).Error
	return cals, err
}

// CreateCalendarObject stores one object. A UID or URI already present in
// the calendar yields database.ErrDuplicateObject.
func (r *Repository) CreateCalendarObject(obj *entities.CalendarObject) error {
	if err := r.db.Create(obj).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("calendar object %q: %w", obj.UID, database.ErrDuplicateObject)
		}
		return err
	}
	return nil
}

func (r *Repository) CountObjects(calendarID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.CalendarObject{}).Where("calendar_id = ?", calendarID).Count(&count).Error
	return count, err
}

func (r *Repository) ListObjects(calendarID uint) ([]entities.CalendarObject, error) {
	var objs []entities.CalendarObject
	err := r.db.Where("calendar_id = ?", calendarID).Order("id ASC").Find(&objs).Error
	return objs, err
}
