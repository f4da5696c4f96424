// ABOUTME: MCP prompt handlers for birthday workflows
// ABOUTME: Provides greeting and upcoming-birthday planning prompts built from contact data
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

const defaultPlanDays = 30

type PromptHandlers struct {
	birthdays *BirthdayHandlers
}

func NewPromptHandlers(birthdays *BirthdayHandlers) *PromptHandlers {
	return &PromptHandlers{birthdays: birthdays}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "birthday-greeting":
		return h.getGreetingPrompt(ctx, arguments)
	case "upcoming-birthdays":
		return h.getUpcomingPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getGreetingPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	name := strings.TrimSpace(args["name"])
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	contacts, _, err := h.birthdays.readContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	var contact *models.Contact
	for i := range contacts {
		if strings.EqualFold(contacts[i].Name, name) {
			contact = &contacts[i]
			break
		}
	}
	if contact == nil {
		return nil, fmt.Errorf("no contact named %q", name)
	}
	if contact.Birthday == nil {
		return nil, fmt.Errorf("%s has no birthday on record", contact.Name)
	}

	next, err := sync.NextOccurrence(*contact.Birthday, h.birthdays.clock.Now(), h.birthdays.cfg.Location())
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString("Please write a short, warm birthday message for this person:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	promptText.WriteString(fmt.Sprintf("Birthday: %s\n", next.Format("January 2")))
	if contact.Birthday.Year != 0 {
		promptText.WriteString(fmt.Sprintf("Turning: %d\n", next.Year()-contact.Birthday.Year))
	}
	if tone := args["tone"]; tone != "" {
		promptText.WriteString(fmt.Sprintf("Tone: %s\n", tone))
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Birthday greeting for %s", contact.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}

func (h *PromptHandlers) getUpcomingPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := defaultPlanDays
	if raw := args["days"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("days must be a positive number")
		}
		days = n
	}

	contacts, _, err := h.birthdays.collectBirthdays(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	sortUpcoming(contacts)

	now := h.birthdays.clock.Now().In(h.birthdays.cfg.Location())
	cutoff := now.AddDate(0, 0, days).Format(time.DateOnly)

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("These birthdays are coming up in the next %d days:\n\n", days))
	count := 0
	for _, c := range contacts {
		if c.NextOccurrence == "" || c.NextOccurrence > cutoff {
			continue
		}
		promptText.WriteString(fmt.Sprintf("- %s on %s\n", c.Name, c.NextOccurrence))
		count++
	}
	if count == 0 {
		promptText.WriteString("(none)\n")
	}
	promptText.WriteString("\nSuggest who to reach out to and when, and note anything that needs preparing ahead of time.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Birthdays in the next %d days", days),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
