// ABOUTME: Calendar API client setup for Google Calendar integration
// ABOUTME: Lists and creates calendars and inserts birthday events, mapping 409 to duplicates
package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/harperreed/gcalsync/models"
)

// CalendarEntry is a calendar visible to the account.
type CalendarEntry struct {
	ID       string
	Summary  string
	TimeZone string
	Primary  bool
}

// CalendarDirectory lists and creates calendars.
type CalendarDirectory interface {
	ListCalendars(ctx context.Context) ([]CalendarEntry, error)
	CreateCalendar(ctx context.Context, name, timeZone string) (string, error)
}

// EventSink inserts events. A duplicate identity is reported as
// ErrDuplicateEvent. On success it returns a link to the event.
type EventSink interface {
	InsertEvent(ctx context.Context, calendarID string, draft *models.EventDraft) (string, error)
}

// NewCalendarClient creates a Google Calendar API service.
func NewCalendarClient(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*calendar.Service, error) {
	if client == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return service, nil
}

// GoogleCalendar implements CalendarDirectory and EventSink.
type GoogleCalendar struct {
	service *calendar.Service
}

// NewGoogleCalendar wraps a Calendar service.
func NewGoogleCalendar(service *calendar.Service) *GoogleCalendar {
	return &GoogleCalendar{service: service}
}

// ListCalendars returns every calendar list entry across all pages.
func (g *GoogleCalendar) ListCalendars(ctx context.Context) ([]CalendarEntry, error) {
	var entries []CalendarEntry

	err := g.service.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			entries = append(entries, CalendarEntry{
				ID:       item.Id,
				Summary:  item.Summary,
				TimeZone: item.TimeZone,
				Primary:  item.Primary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	return entries, nil
}

// CreateCalendar creates a secondary calendar and returns its ID.
func (g *GoogleCalendar) CreateCalendar(ctx context.Context, name, timeZone string) (string, error) {
	created, err := g.service.Calendars.Insert(&calendar.Calendar{
		Summary:  name,
		TimeZone: timeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar %q: %w", name, err)
	}

	return created.Id, nil
}

// InsertEvent inserts a draft into the calendar.
func (g *GoogleCalendar) InsertEvent(ctx context.Context, calendarID string, draft *models.EventDraft) (string, error) {
	created, err := g.service.Events.Insert(calendarID, ToCalendarEvent(draft)).Context(ctx).Do()
	if err != nil {
		if IsConflict(err) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateEvent, draft.ID)
		}
		return "", fmt.Errorf("failed to insert event %s: %w", draft.ID, err)
	}

	return created.HtmlLink, nil
}

// IsConflict reports whether err is an HTTP 409 from a Google API.
func IsConflict(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// ToCalendarEvent converts a draft to the Calendar API representation.
// A Feb 29 birthday in a common year starts on Feb 28; the recurrence
// still lands on the last day of February every year.
func ToCalendarEvent(draft *models.EventDraft) *calendar.Event {
	date := draft.Date.Date(time.UTC).Format(time.DateOnly)

	event := &calendar.Event{
		Id:           draft.ID,
		Summary:      draft.Summary,
		Start:        &calendar.EventDateTime{Date: date, TimeZone: draft.TimeZone},
		End:          &calendar.EventDateTime{Date: date, TimeZone: draft.TimeZone},
		Visibility:   draft.Visibility,
		Transparency: draft.Transparency,
		Recurrence:   []string{"RRULE:" + draft.Recurrence},
	}

	if draft.IsNative() {
		event.EventType = draft.EventType
		event.BirthdayProperties = &calendar.EventBirthdayProperties{Type: draft.BirthdayType}
		return event
	}

	if draft.Metadata != nil {
		event.ExtendedProperties = &calendar.EventExtendedProperties{Private: draft.Metadata}
	}

	return event
}
