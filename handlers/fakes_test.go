package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcalsync/config"
	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

// memoryBackend is a single-page in-memory Google account.
type memoryBackend struct {
	people    []*people.Person
	calendars []sync.CalendarEntry
	inserted  map[string][]*models.EventDraft
	failIDs   map[string]bool
}

func newMemoryBackend(persons ...*people.Person) *memoryBackend {
	return &memoryBackend{people: persons, inserted: map[string][]*models.EventDraft{}, failIDs: map[string]bool{}}
}

func (m *memoryBackend) ListContacts(_ context.Context, _ sync.ContactPageRequest) (*sync.ContactPage, error) {
	return &sync.ContactPage{People: m.people}, nil
}

func (m *memoryBackend) ListCalendars(_ context.Context) ([]sync.CalendarEntry, error) {
	return m.calendars, nil
}

func (m *memoryBackend) CreateCalendar(_ context.Context, name, timeZone string) (string, error) {
	id := "cal-" + name
	m.calendars = append(m.calendars, sync.CalendarEntry{ID: id, Summary: name, TimeZone: timeZone})
	return id, nil
}

func (m *memoryBackend) InsertEvent(_ context.Context, calendarID string, draft *models.EventDraft) (string, error) {
	if m.failIDs[draft.ID] {
		return "", errors.New("backend error")
	}
	for _, existing := range m.inserted[calendarID] {
		if existing.ID == draft.ID {
			return "", sync.ErrDuplicateEvent
		}
	}
	m.inserted[calendarID] = append(m.inserted[calendarID], draft)
	return "https://calendar.example/" + draft.ID, nil
}

type staticConnector struct {
	backend sync.Backend
	err     error
}

func (c staticConnector) Connect(_ context.Context) (sync.Backend, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.backend, nil
}

func person(resource, name string, year, month, day int64) *people.Person {
	p := &people.Person{ResourceName: resource, Names: []*people.Name{{DisplayName: name}}}
	if month != 0 {
		p.Birthdays = []*people.Birthday{{Date: &people.Date{Year: year, Month: month, Day: day}}}
	}
	return p
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TimeZone = "Europe/Berlin"
	return cfg
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
