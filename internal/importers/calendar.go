package importers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/transform"
)

const (
	eventPageSize        = 250
	calendarListPageSize = 250

	calendarNameSuffix = " (Calendar import)"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// CalendarSink stores calendars and their objects.
type CalendarSink interface {
	GetCalendarByURI(userID, uri string) (*entities.Calendar, error)
	CreateCalendar(userID, uri, displayName, color string) (*entities.Calendar, error)
	CreateCalendarObject(obj *entities.CalendarObject) error
}

// CalendarImportResult is returned by ImportCalendar.
type CalendarImportResult struct {
	NbAdded int    `json:"nbAdded"`
	CalName string `json:"calName"`
}

// CalendarImporter copies one remote calendar into a local calendar in a
// single pass.
type CalendarImporter struct {
	client APIClient
	sink   CalendarSink
	now    func() time.Time
}

func NewCalendarImporter(client APIClient, sink CalendarSink) *CalendarImporter {
	return &CalendarImporter{client: client, sink: sink, now: time.Now}
}

// CalendarList returns the calendars of the user's Google account.
func (c *CalendarImporter) CalendarList(ctx context.Context, userID string) ([]*calendar.CalendarListEntry, error) {
	pager := google.NewPaginator[*calendar.CalendarListEntry](c.client, userID, google.Request{
		Endpoint: "/calendar/v3/users/me/calendarList",
	}, "items", calendarListPageSize).WithPageSizeParam("maxResults")

	var calendars []*calendar.CalendarListEntry
	for entry := range pager.Items(ctx) {
		calendars = append(calendars, entry)
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	return calendars, nil
}

// ImportCalendar streams every event of remote calendar calID into the
// local calendar "<calName> (Calendar import)", creating it if needed.
// Events already imported with the same etag collide on UID and are skipped.
func (c *CalendarImporter) ImportCalendar(ctx context.Context, userID, calID, calName, color string) (*CalendarImportResult, error) {
	name := calName + calendarNameSuffix
	uri := calendarURI(calID)

	cal, err := c.sink.GetCalendarByURI(userID, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to look up calendar: %w", err)
	}
	if cal == nil {
		normalized, err := transform.NormalizeColor(color)
		if err != nil {
			log.Printf("Calendar import: ignoring color for %q: %v", name, err)
		}
		cal, err = c.sink.CreateCalendar(userID, uri, name, normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar: %w", err)
		}
	}

	pager := google.NewPaginator[*calendar.Event](c.client, userID, google.Request{
		Endpoint: "/calendar/v3/calendars/" + url.PathEscape(calID) + "/events",
	}, "items", eventPageSize).WithPageSizeParam("maxResults")

	result := &CalendarImportResult{CalName: name}
	now := c.now()
	for event := range pager.Items(ctx) {
		if c.writeEvent(cal, event, now) {
			result.NbAdded++
		}
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}

	log.Printf("Calendar import: added %d events to %q for user %s", result.NbAdded, name, userID)
	return result, nil
}

func (c *CalendarImporter) writeEvent(cal *entities.Calendar, event *calendar.Event, now time.Time) bool {
	obj, err := transform.EventToCalendarObject(event, cal.ID, now)
	if errors.Is(err, transform.ErrUnsupportedItem) {
		return false
	}
	if err != nil {
		log.Printf("Calendar import: skipping event %s: %v", event.Id, err)
		return false
	}

	err = c.sink.CreateCalendarObject(&entities.CalendarObject{
		CalendarID: cal.ID,
		URI:        obj.URI,
		UID:        obj.UID,
		Data:       obj.Data,
		ETag:       strings.Trim(event.Etag, `"`),
	})
	if errors.Is(err, database.ErrDuplicateObject) {
		log.Printf("Calendar import: event %s already imported", obj.UID)
		return false
	}
	if err != nil {
		log.Printf("Calendar import: failed to write event %s: %v", obj.UID, err)
		return false
	}
	return true
}

// calendarURI derives the local calendar URI from the remote calendar id,
// so importing the same calendar twice reuses it.
func calendarURI(calID string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(calID), "-"), "-")
	return "google-" + slug
}
