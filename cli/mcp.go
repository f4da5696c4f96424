// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server exposing birthday tools over stdio
package cli

import (
	"context"
	"flag"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcalsync/handlers"
)

// NewMCPServer registers the birthday tools on a new MCP server.
func (a *App) NewMCPServer(version string) (*mcp.Server, error) {
	connector, err := a.connector()
	if err != nil {
		return nil, err
	}

	birthdayHandlers := handlers.NewBirthdayHandlers(a.Config, connector, a.Logger)
	resourceHandlers := handlers.NewResourceHandlers(birthdayHandlers)
	promptHandlers := handlers.NewPromptHandlers(birthdayHandlers)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gcalsync",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_birthdays",
		Description: "List Google Contacts with their birthdays and next occurrence",
	}, birthdayHandlers.ListBirthdays)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_calendar",
		Description: "Look up a Google Calendar id by its display name",
	}, birthdayHandlers.FindCalendar)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_birthdays",
		Description: "Create a yearly birthday event in a calendar for every contact with a birthday, skipping events that already exist",
	}, birthdayHandlers.SyncBirthdays)

	// Register resources
	server.AddResource(&mcp.Resource{
		URI:         handlers.UpcomingURI,
		Name:        "upcoming-birthdays",
		Description: "Contacts with a birthday, ordered by next occurrence",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         handlers.CalendarURI,
		Name:        "birthday-calendar",
		Description: "Birthday events as an iCalendar file",
		MIMEType:    "text/calendar",
	}, resourceHandlers.ReadResource)

	// Register prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "birthday-greeting",
		Description: "Draft a birthday message for a contact",
		Arguments: []*mcp.PromptArgument{
			{Name: "name", Description: "Contact display name", Required: true},
			{Name: "tone", Description: "Tone of the message, e.g. formal or playful"},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "upcoming-birthdays",
		Description: "Plan outreach for birthdays coming up soon",
		Arguments: []*mcp.PromptArgument{
			{Name: "days", Description: "How many days ahead to look (default 30)"},
		},
	}, promptHandlers.GetPrompt)

	return server, nil
}

// MCPCommand starts the MCP server on stdio
func (a *App) MCPCommand(ctx context.Context, args []string, version string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := a.NewMCPServer(version)
	if err != nil {
		return err
	}

	a.Logger.Info("starting MCP server", "transport", "stdio")

	// Run server on stdio transport
	return server.Run(ctx, &mcp.StdioTransport{})
}
