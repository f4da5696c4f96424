// ABOUTME: MCP resource handlers for exposing birthday data
// ABOUTME: Provides read-only upcoming birthdays as JSON and the birthday calendar as iCalendar
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

// Resource URIs served by ResourceHandlers.
const (
	UpcomingURI = "birthdays://upcoming"
	CalendarURI = "birthdays://calendar.ics"
)

type ResourceHandlers struct {
	birthdays *BirthdayHandlers
}

func NewResourceHandlers(birthdays *BirthdayHandlers) *ResourceHandlers {
	return &ResourceHandlers{birthdays: birthdays}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	switch uri {
	case UpcomingURI:
		return h.readUpcoming(ctx)
	case CalendarURI:
		return h.readCalendar(ctx)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readUpcoming(ctx context.Context) (*mcp.ReadResourceResult, error) {
	contacts, _, err := h.birthdays.collectBirthdays(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	sortUpcoming(contacts)

	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal birthdays: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      UpcomingURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readCalendar(ctx context.Context) (*mcp.ReadResourceResult, error) {
	contacts, _, err := h.birthdays.readContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	mapper := sync.NewEventMapper(h.birthdays.cfg.TimeZone)
	mapper.Clock = h.birthdays.clock

	var drafts []*models.EventDraft
	for _, contact := range contacts {
		if draft, ok := mapper.Map(contact, false); ok {
			drafts = append(drafts, draft)
		}
	}

	var buf bytes.Buffer
	if err := sync.ExportICS(&buf, drafts, h.birthdays.clock.Now()); err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      CalendarURI,
			MIMEType: "text/calendar",
			Text:     buf.String(),
		},
	}}, nil
}
