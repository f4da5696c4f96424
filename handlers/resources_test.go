package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readResource(t *testing.T, h *ResourceHandlers, uri string) (*mcp.ReadResourceResult, error) {
	t.Helper()
	return h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	})
}

func TestReadUpcomingResource(t *testing.T) {
	h := NewResourceHandlers(newTestHandlers(sampleBackend()))

	result, err := readResource(t, h, UpcomingURI)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var birthdays []BirthdayOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &birthdays))
	require.Len(t, birthdays, 3)

	var names []string
	for _, b := range birthdays {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Grace Hopper", "Ada Lovelace", "Alan Turing"}, names)
}

func TestReadCalendarResource(t *testing.T) {
	h := NewResourceHandlers(newTestHandlers(sampleBackend()))

	result, err := readResource(t, h, CalendarURI)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	ics := result.Contents[0].Text
	assert.Equal(t, "text/calendar", result.Contents[0].MIMEType)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Birthday: Grace Hopper")
	assert.Equal(t, 3, countOccurrences(ics, "BEGIN:VEVENT"))
}

func TestReadUnknownResource(t *testing.T) {
	h := NewResourceHandlers(newTestHandlers(sampleBackend()))

	_, err := readResource(t, h, "birthdays://nope")
	assert.Error(t, err)
}

func TestReadResourceConnectError(t *testing.T) {
	birthdays := NewBirthdayHandlers(testConfig(), staticConnector{err: assert.AnError}, discardLogger())
	h := NewResourceHandlers(birthdays)

	_, err := readResource(t, h, UpcomingURI)
	assert.ErrorIs(t, err, assert.AnError)
}

func countOccurrences(s, substr string) int {
	n := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			n++
		}
	}
	return n
}
