package transform

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"google.golang.org/api/calendar/v3"
)

const (
	productID = "-//google-importer//Calendar import//EN"

	defaultReminderMinutes = 15

	icalDate     = "20060102"
	icalDateTime = "20060102T150405Z"
)

// CalendarObject is a serialized event ready for the calendar sink.
type CalendarObject struct {
	UID  string
	URI  string
	Data string
}

// EventUID derives the object UID from the local calendar, the remote
// event and its etag. An edited event gets a new etag and therefore a new
// object on the next import; unchanged events collide on UID.
func EventUID(localCalendarID uint, event *calendar.Event) string {
	etag := strings.Trim(event.Etag, `"`)
	return fmt.Sprintf("%d-%s-%s", localCalendarID, event.Id, etag)
}

// EventToCalendarObject serializes event as a VCALENDAR holding one VEVENT.
// Events with neither a date nor a date-time return ErrUnsupportedItem.
func EventToCalendarObject(event *calendar.Event, localCalendarID uint, now time.Time) (*CalendarObject, error) {
	if event == nil {
		return nil, ErrUnsupportedItem
	}
	start, err := dateProp(ical.PropDateTimeStart, event.Start)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, ErrUnsupportedItem
	}

	uid := EventUID(localCalendarID, event)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.Set(utcProp(ical.PropDateTimeStamp, now))
	vevent.Props.Set(start)

	end, err := dateProp(ical.PropDateTimeEnd, event.End)
	if err != nil {
		return nil, err
	}
	if end != nil {
		vevent.Props.Set(end)
	}

	setText(vevent.Props, ical.PropSummary, event.Summary)
	setText(vevent.Props, ical.PropDescription, event.Description)
	setText(vevent.Props, ical.PropLocation, event.Location)
	setText(vevent.Props, ical.PropStatus, strings.ToUpper(event.Status))
	if event.HtmlLink != "" {
		vevent.Props.Set(&ical.Prop{Name: ical.PropURL, Params: ical.Params{}, Value: event.HtmlLink})
	}
	if t, err := time.Parse(time.RFC3339, event.Created); err == nil {
		vevent.Props.Set(utcProp(ical.PropCreated, t))
	}
	if t, err := time.Parse(time.RFC3339, event.Updated); err == nil {
		vevent.Props.Set(utcProp(ical.PropLastModified, t))
	}

	for _, line := range event.Recurrence {
		prop, ok := parseContentLine(line)
		if ok {
			vevent.Props.Add(prop)
		}
	}

	for _, minutes := range reminderMinutes(event.Reminders) {
		vevent.Children = append(vevent.Children, alarm(minutes, event.Summary))
	}

	cal.Children = append(cal.Children, vevent.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", event.Id, err)
	}

	return &CalendarObject{UID: uid, URI: uid + ".ics", Data: buf.String()}, nil
}

// dateProp returns nil when dt carries neither a date nor a date-time.
// All-day dates stay floating; timed events are converted to UTC.
func dateProp(name string, dt *calendar.EventDateTime) (*ical.Prop, error) {
	if dt == nil {
		return nil, nil
	}
	if dt.Date != "" {
		d, err := time.Parse("2006-01-02", dt.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", dt.Date, err)
		}
		return &ical.Prop{
			Name:   name,
			Params: ical.Params{ical.ParamValue: {string(ical.ValueDate)}},
			Value:  d.Format(icalDate),
		}, nil
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return nil, fmt.Errorf("invalid date-time %q: %w", dt.DateTime, err)
		}
		return utcProp(name, t), nil
	}
	return nil, nil
}

func utcProp(name string, t time.Time) *ical.Prop {
	return &ical.Prop{Name: name, Params: ical.Params{}, Value: t.UTC().Format(icalDateTime)}
}

func setText(props ical.Props, name, value string) {
	if value != "" {
		props.SetText(name, value)
	}
}

// reminderMinutes lists the alarm offsets for an event. Default reminders
// become a single alarm fifteen minutes before the start.
func reminderMinutes(r *calendar.EventReminders) []int64 {
	if r == nil {
		return nil
	}
	if r.UseDefault {
		return []int64{defaultReminderMinutes}
	}
	minutes := make([]int64, 0, len(r.Overrides))
	for _, o := range r.Overrides {
		if o != nil {
			minutes = append(minutes, o.Minutes)
		}
	}
	return minutes
}

func alarm(minutes int64, summary string) *ical.Component {
	c := ical.NewComponent(ical.CompAlarm)
	c.Props.SetText(ical.PropAction, "DISPLAY")
	description := summary
	if description == "" {
		description = "Reminder"
	}
	c.Props.SetText(ical.PropDescription, description)
	c.Props.Set(&ical.Prop{
		Name:   ical.PropTrigger,
		Params: ical.Params{},
		Value:  fmt.Sprintf("-PT%dM", minutes),
	})
	return c
}

// parseContentLine splits an RFC 5545 content line such as
// "EXDATE;TZID=Europe/Paris:20240101T100000" without touching the value.
func parseContentLine(line string) (*ical.Prop, bool) {
	head, value, ok := strings.Cut(strings.TrimSpace(line), ":")
	if !ok || head == "" {
		return nil, false
	}

	parts := strings.Split(head, ";")
	prop := &ical.Prop{
		Name:   strings.ToUpper(parts[0]),
		Params: ical.Params{},
		Value:  value,
	}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		prop.Params[strings.ToUpper(k)] = strings.Split(v, ",")
	}
	return prop, true
}
