package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/harperreed/gcalsync/models"
)

func newTestCalendar(t *testing.T, handler http.HandlerFunc) *GoogleCalendar {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := NewCalendarClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return NewGoogleCalendar(service)
}

func TestNewCalendarClientNilHTTPClient(t *testing.T) {
	service, err := NewCalendarClient(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil http client, got nil")
	}
	if service != nil {
		t.Error("expected nil service for nil http client")
	}
}

func TestGoogleCalendarListCalendarsPaginates(t *testing.T) {
	cal := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "users/me/calendarList") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items":         []map[string]any{{"id": "me@example.com", "summary": "me@example.com", "primary": true}},
				"nextPageToken": "next",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "abc@group.calendar.google.com", "summary": "contacts", "timeZone": "Europe/Berlin"}},
		})
	})

	entries, err := cal.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Primary)
	assert.Equal(t, "contacts", entries[1].Summary)
	assert.Equal(t, "abc@group.calendar.google.com", entries[1].ID)
}

func TestGoogleCalendarCreateCalendar(t *testing.T) {
	var got calendar.Calendar
	cal := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "new@group.calendar.google.com", "summary": got.Summary})
	})

	id, err := cal.CreateCalendar(context.Background(), "contacts", "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "new@group.calendar.google.com", id)
	assert.Equal(t, "contacts", got.Summary)
	assert.Equal(t, "Europe/Berlin", got.TimeZone)
}

func TestGoogleCalendarInsertEvent(t *testing.T) {
	var got calendar.Event
	var path string
	cal := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": got.Id, "htmlLink": "https://calendar.google.com/event?eid=x"})
	})

	draft, ok := testMapper().Map(ada(), false)
	require.True(t, ok)

	link, err := cal.InsertEvent(context.Background(), "cal-1", draft)
	require.NoError(t, err)
	assert.Equal(t, "https://calendar.google.com/event?eid=x", link)
	assert.True(t, strings.HasSuffix(path, "calendars/cal-1/events"), "unexpected path %s", path)

	assert.Equal(t, "b123", got.Id)
	assert.Equal(t, "Birthday: Ada Lovelace", got.Summary)
	assert.Equal(t, []string{"RRULE:FREQ=YEARLY;BYMONTH=2;BYMONTHDAY=-1"}, got.Recurrence)
	assert.Equal(t, "1990-02-28", got.Start.Date, "Feb 29 in a common year is sent as a valid date")
	assert.Equal(t, "1990-02-28", got.End.Date)
	assert.Equal(t, "1990-02-29", draft.Date.String(), "the draft keeps the recorded birthday")
	assert.Equal(t, "gcalsync", got.ExtendedProperties.Private["created_by"])
}

func TestGoogleCalendarInsertEventConflict(t *testing.T) {
	cal := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":409,"message":"The requested identifier already exists."}}`))
	})

	draft, _ := testMapper().Map(ada(), false)
	_, err := cal.InsertEvent(context.Background(), "cal-1", draft)
	assert.ErrorIs(t, err, ErrDuplicateEvent)
}

func TestGoogleCalendarInsertEventFailure(t *testing.T) {
	cal := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid resource id value."}}`))
	})

	draft, _ := testMapper().Map(ada(), false)
	_, err := cal.InsertEvent(context.Background(), "cal-1", draft)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateEvent))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(&googleapi.Error{Code: 409}))
	assert.False(t, IsConflict(&googleapi.Error{Code: 404}))
	assert.False(t, IsConflict(errors.New("409")))
	assert.False(t, IsConflict(nil))
}

func TestToCalendarEventVariants(t *testing.T) {
	b := &models.Birthday{Year: 1815, Month: time.December, Day: 10}
	contact := models.Contact{ResourceName: "people/c9", Name: "Ada", Birthday: b}
	m := testMapper()

	genericDraft, _ := m.Map(contact, false)
	generic := ToCalendarEvent(genericDraft)
	assert.Empty(t, generic.EventType)
	assert.Nil(t, generic.BirthdayProperties)
	require.NotNil(t, generic.ExtendedProperties)
	assert.Equal(t, "people/c9", generic.ExtendedProperties.Private["contact"])
	assert.Equal(t, []string{"RRULE:FREQ=YEARLY"}, generic.Recurrence)
	assert.Equal(t, "private", generic.Visibility)
	assert.Equal(t, "transparent", generic.Transparency)
	assert.Equal(t, "Europe/Berlin", generic.Start.TimeZone)

	nativeDraft, _ := m.Map(contact, true)
	native := ToCalendarEvent(nativeDraft)
	assert.Equal(t, "birthday", native.EventType)
	require.NotNil(t, native.BirthdayProperties)
	assert.Equal(t, "birthday", native.BirthdayProperties.Type)
	assert.Nil(t, native.ExtendedProperties)
	assert.Equal(t, "Ada", native.Summary)
}

func TestToCalendarEventDatesAreValid(t *testing.T) {
	m := testMapper()
	for _, b := range []models.Birthday{
		{Year: 1990, Month: time.February, Day: 29},
		{Year: 2000, Month: time.February, Day: 29},
		{Year: 1984, Month: time.December, Day: 31},
	} {
		contact := models.Contact{ResourceName: "people/1", Name: "Someone", Birthday: &b}
		for _, native := range []bool{false, true} {
			draft, ok := m.Map(contact, native)
			require.True(t, ok)

			event := ToCalendarEvent(draft)
			_, err := time.Parse(time.DateOnly, event.Start.Date)
			assert.NoError(t, err, "birthday %s", b)
			assert.Equal(t, event.Start.Date, event.End.Date)
		}
	}

	leap, _ := m.Map(models.Contact{ResourceName: "people/2", Name: "Leap", Birthday: &models.Birthday{Year: 2000, Month: time.February, Day: 29}}, false)
	assert.Equal(t, "2000-02-29", ToCalendarEvent(leap).Start.Date)
}
