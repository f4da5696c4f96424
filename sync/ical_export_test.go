package sync

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/gcalsync/models"
)

func TestExportICS_GenericDrafts(t *testing.T) {
	m := testMapper()
	m.RunID = "run-7"
	draft, ok := m.Map(ada(), false)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, ExportICS(&buf, []*models.EventDraft{draft}, time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)
	props := events[0].Props

	assert.Equal(t, "b123@gcalsync", props.Get(ical.PropUID).Value)
	assert.Equal(t, "Birthday: Ada Lovelace", props.Get(ical.PropSummary).Value)
	assert.Equal(t, "19900228", props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "FREQ=YEARLY;BYMONTH=2;BYMONTHDAY=-1", props.Get(ical.PropRecurrenceRule).Value)
	assert.Equal(t, "PRIVATE", props.Get(ical.PropClass).Value)
	assert.Equal(t, "TRANSPARENT", props.Get(ical.PropTransparency).Value)
	assert.Equal(t, "20261017T093000Z", props.Get(ical.PropDateTimeStamp).Value)
	assert.Equal(t, "people/123", props.Get("X-GCALSYNC-CONTACT").Value)
	assert.Equal(t, "gcalsync", props.Get("X-GCALSYNC-CREATED-BY").Value)
	assert.Equal(t, "run-7", props.Get("X-GCALSYNC-SYNC-RUN").Value)
}

func TestExportICS_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportICS(&buf, nil, time.Now()))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
	assert.Equal(t, "-//gcalsync//Birthday Export//EN", cal.Props.Get(ical.PropProductID).Value)
}

func TestExportICS_BadTimeZone(t *testing.T) {
	draft, ok := testMapper().Map(ada(), false)
	require.True(t, ok)
	draft.TimeZone = "Mars/Olympus"

	var buf bytes.Buffer
	assert.Error(t, ExportICS(&buf, []*models.EventDraft{draft}, time.Now()))
}
