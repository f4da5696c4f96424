// ABOUTME: Birthday MCP tool handlers
// ABOUTME: Implements list_birthdays, find_calendar, and sync_birthdays tools
package handlers

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcalsync/config"
	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

type BirthdayHandlers struct {
	cfg       *config.Config
	connector sync.Connector
	logger    *log.Logger
	clock     sync.Clock
}

func NewBirthdayHandlers(cfg *config.Config, connector sync.Connector, logger *log.Logger) *BirthdayHandlers {
	return &BirthdayHandlers{
		cfg:       cfg,
		connector: connector,
		logger:    logger.With("component", "mcp"),
		clock:     sync.RealClock{},
	}
}

type ListBirthdaysInput struct {
	IncludeMissing bool `json:"include_missing,omitempty" jsonschema:"Also list contacts without a birthday"`
	Upcoming       bool `json:"upcoming,omitempty" jsonschema:"Sort by next occurrence instead of contact order"`
	Limit          int  `json:"limit,omitempty" jsonschema:"Maximum results (0 for all)"`
}

type BirthdayOutput struct {
	Name           string `json:"name"`
	ResourceName   string `json:"resource_name"`
	Birthday       string `json:"birthday,omitempty"`
	NextOccurrence string `json:"next_occurrence,omitempty"`
	EventID        string `json:"event_id,omitempty"`
}

type ListBirthdaysOutput struct {
	Contacts []BirthdayOutput `json:"contacts"`
	Total    int              `json:"total"`
	Warning  string           `json:"warning,omitempty"`
}

func (h *BirthdayHandlers) ListBirthdays(ctx context.Context, _ *mcp.CallToolRequest, input ListBirthdaysInput) (*mcp.CallToolResult, ListBirthdaysOutput, error) {
	if input.Limit < 0 {
		return nil, ListBirthdaysOutput{}, fmt.Errorf("limit must not be negative")
	}

	contacts, fetchErr, err := h.collectBirthdays(ctx, input.IncludeMissing)
	if err != nil {
		return nil, ListBirthdaysOutput{}, err
	}

	if input.Upcoming {
		sortUpcoming(contacts)
	}

	total := len(contacts)
	if input.Limit > 0 && len(contacts) > input.Limit {
		contacts = contacts[:input.Limit]
	}

	output := ListBirthdaysOutput{Contacts: contacts, Total: total}
	if fetchErr != nil {
		output.Warning = fmt.Sprintf("contact listing stopped early: %v", fetchErr)
	}

	return nil, output, nil
}

// readContacts drains the contact pipeline. fetchErr is the error that
// ended pagination early; err means no contact source could be opened.
func (h *BirthdayHandlers) readContacts(ctx context.Context) (contacts []models.Contact, fetchErr, err error) {
	source, err := sync.OpenContactSource(ctx, h.connector, h.cfg.ContactsFile)
	if err != nil {
		return nil, nil, err
	}

	pipeline := sync.NewContactPipeline(source, h.cfg.PageSize, h.logger)
	contacts = pipeline.Collect(ctx)
	return contacts, pipeline.Err(), nil
}

func (h *BirthdayHandlers) collectBirthdays(ctx context.Context, includeMissing bool) (outputs []BirthdayOutput, fetchErr, err error) {
	contacts, fetchErr, err := h.readContacts(ctx)
	if err != nil {
		return nil, nil, err
	}

	loc := h.cfg.Location()
	now := h.clock.Now()

	outputs = []BirthdayOutput{}
	for _, contact := range contacts {
		if contact.Birthday == nil && !includeMissing {
			continue
		}

		out := BirthdayOutput{Name: contact.Name, ResourceName: contact.ResourceName}
		if contact.Birthday != nil {
			out.Birthday = contact.Birthday.String()
			out.EventID = sync.EventID(contact.ResourceName)
			if next, err := sync.NextOccurrence(*contact.Birthday, now, loc); err == nil {
				out.NextOccurrence = next.Format("2006-01-02")
			}
		}
		outputs = append(outputs, out)
	}

	return outputs, fetchErr, nil
}

// sortUpcoming orders by next occurrence; contacts without one go last.
func sortUpcoming(contacts []BirthdayOutput) {
	slices.SortStableFunc(contacts, func(a, b BirthdayOutput) int {
		switch {
		case a.NextOccurrence == b.NextOccurrence:
			return 0
		case a.NextOccurrence == "":
			return 1
		case b.NextOccurrence == "":
			return -1
		}
		return cmp.Compare(a.NextOccurrence, b.NextOccurrence)
	})
}

type FindCalendarInput struct {
	Name string `json:"name" jsonschema:"Calendar display name, or primary (required)"`
}

type FindCalendarOutput struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Found bool   `json:"found"`
}

func (h *BirthdayHandlers) FindCalendar(ctx context.Context, _ *mcp.CallToolRequest, input FindCalendarInput) (*mcp.CallToolResult, FindCalendarOutput, error) {
	if input.Name == "" {
		return nil, FindCalendarOutput{}, fmt.Errorf("name is required")
	}

	backend, err := h.connector.Connect(ctx)
	if err != nil {
		return nil, FindCalendarOutput{}, err
	}

	id, found, err := sync.FindCalendar(ctx, backend, input.Name)
	if err != nil {
		return nil, FindCalendarOutput{}, fmt.Errorf("failed to list calendars: %w", err)
	}

	return nil, FindCalendarOutput{Name: input.Name, ID: id, Found: found}, nil
}

type SyncBirthdaysInput struct {
	Calendar        string `json:"calendar,omitempty" jsonschema:"Target calendar name (defaults to the configured calendar; primary uses native birthday events)"`
	ContinueOnError bool   `json:"continue_on_error,omitempty" jsonschema:"Keep going when an event cannot be created"`
}

type SyncBirthdaysOutput struct {
	RunID        string   `json:"run_id"`
	CalendarID   string   `json:"calendar_id"`
	Native       bool     `json:"native"`
	Seen         int      `json:"seen"`
	WithBirthday int      `json:"with_birthday"`
	Created      int      `json:"created"`
	Duplicates   int      `json:"duplicates"`
	Failed       int      `json:"failed"`
	Failures     []string `json:"failures,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

func (h *BirthdayHandlers) SyncBirthdays(ctx context.Context, _ *mcp.CallToolRequest, input SyncBirthdaysInput) (*mcp.CallToolResult, SyncBirthdaysOutput, error) {
	calendarName := input.Calendar
	if calendarName == "" {
		calendarName = h.cfg.DefaultCalendar
	}

	syncer := sync.NewSyncer(h.connector, sync.Options{
		TimeZone:        h.cfg.TimeZone,
		PageSize:        h.cfg.PageSize,
		ContinueOnError: input.ContinueOnError || h.cfg.ContinueOnError,
		Clock:           h.clock,
	}, h.logger)

	result, err := syncer.Run(ctx, calendarName)
	if err != nil {
		// Insert failures still report the partial run.
		if result != nil && len(result.Failures) > 0 {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, syncOutput(result), nil
		}
		return nil, SyncBirthdaysOutput{}, fmt.Errorf("sync failed: %w", err)
	}

	return nil, syncOutput(result), nil
}

func syncOutput(result *sync.Result) SyncBirthdaysOutput {
	output := SyncBirthdaysOutput{
		RunID:        result.RunID,
		CalendarID:   result.CalendarID,
		Native:       result.Native,
		Seen:         result.Seen,
		WithBirthday: result.WithBirthday,
		Created:      result.Created,
		Duplicates:   result.Duplicates,
		Failed:       result.Failed,
	}
	for _, f := range result.Failures {
		output.Failures = append(output.Failures, f.Error())
	}
	if result.FetchErr != nil {
		output.Warning = fmt.Sprintf("contact listing stopped early: %v", result.FetchErr)
	}
	return output
}
