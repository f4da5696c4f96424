package sync

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/mock"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcalsync/models"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func person(resource, name string, year, month, day int64) *people.Person {
	p := &people.Person{ResourceName: resource}
	if name != "" {
		p.Names = []*people.Name{{DisplayName: name}}
	}
	if year != 0 || month != 0 || day != 0 {
		p.Birthdays = []*people.Birthday{{Date: &people.Date{Year: year, Month: month, Day: day}}}
	}
	return p
}

// fakeContactSource serves fixed pages, using the page index as token.
type fakeContactSource struct {
	pages    [][]*people.Person
	failAt   int // page index that returns err; -1 for none
	err      error
	requests []ContactPageRequest
}

func newFakeContactSource(pages ...[]*people.Person) *fakeContactSource {
	return &fakeContactSource{pages: pages, failAt: -1}
}

func (f *fakeContactSource) ListContacts(_ context.Context, req ContactPageRequest) (*ContactPage, error) {
	f.requests = append(f.requests, req)

	idx := 0
	if req.PageToken != "" {
		n, err := strconv.Atoi(req.PageToken)
		if err != nil {
			return nil, fmt.Errorf("bad page token %q", req.PageToken)
		}
		idx = n
	}
	if idx == f.failAt {
		return nil, f.err
	}
	if idx >= len(f.pages) {
		return &ContactPage{}, nil
	}

	page := &ContactPage{People: f.pages[idx]}
	if idx+1 < len(f.pages) {
		page.NextPageToken = strconv.Itoa(idx + 1)
	}
	return page, nil
}

// fakeDirectory is an in-memory calendar directory.
type fakeDirectory struct {
	calendars   []CalendarEntry
	listErr     error
	createErr   error
	listCalls   int
	createCalls []string
}

func (f *fakeDirectory) ListCalendars(_ context.Context) ([]CalendarEntry, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calendars, nil
}

func (f *fakeDirectory) CreateCalendar(_ context.Context, name, timeZone string) (string, error) {
	f.createCalls = append(f.createCalls, name)
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "cal-" + name
	f.calendars = append(f.calendars, CalendarEntry{ID: id, Summary: name, TimeZone: timeZone})
	return id, nil
}

// mockSink records event inserts through testify/mock.
type mockSink struct {
	mock.Mock
}

func (m *mockSink) InsertEvent(ctx context.Context, calendarID string, draft *models.EventDraft) (string, error) {
	args := m.Called(ctx, calendarID, draft)
	return args.String(0), args.Error(1)
}

type testBackend struct {
	ContactSource
	CalendarDirectory
	EventSink
}

type fakeConnector struct {
	backend Backend
	err     error
	calls   int
}

func (f *fakeConnector) Connect(_ context.Context) (Backend, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.backend, nil
}
