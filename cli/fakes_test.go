package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcalsync/config"
	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// memoryBackend is a single-page in-memory Google account.
type memoryBackend struct {
	people    []*people.Person
	calendars []sync.CalendarEntry
	inserted  map[string][]*models.EventDraft
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
	for _, existing := range m.inserted[calendarID] {
		if existing.ID == draft.ID {
			return "", sync.ErrDuplicateEvent
		}
	}
	m.inserted[calendarID] = append(m.inserted[calendarID], draft)
	return "", nil
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

func sampleBackend() *memoryBackend {
	return &memoryBackend{
		people: []*people.Person{
			person("people/123", "Ada Lovelace", 1990, 2, 29),
			person("people/456", "Grace Hopper", 1906, 12, 9),
			person("people/789", "Nobody Known", 0, 0, 0),
			person("people/321", "Alan Turing", 1912, 6, 23),
		},
		inserted: map[string][]*models.EventDraft{},
	}
}

func newTestApp(t *testing.T, connector sync.Connector) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.ClientSecretFile = ""

	var out bytes.Buffer
	app := NewApp(cfg, log.New(io.Discard), &out)
	app.Connector = connector
	app.Clock = fixedClock{now: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)}
	app.OpenBrowser = nil
	return app, &out
}
