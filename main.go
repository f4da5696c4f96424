// ABOUTME: Entry point for the gcalsync CLI and MCP server
// ABOUTME: Parses global flags, loads config, and routes to birthday sync commands
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/gcalsync/cli"
	"github.com/harperreed/gcalsync/config"
)

const version = "0.2.0"

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file path (default: ~/.config/gcalsync/config.json)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Usage = printUsage

	// Parse global flags; the rest belongs to the command
	_ = flag.CommandLine.Parse(os.Args[1:])

	// Handle version flag
	if *showVersion {
		fmt.Printf("gcalsync version %s\n", version)
		return 0
	}

	// Get remaining args after flags
	args := flag.Args()

	// If no command specified, show usage
	if len(args) == 0 {
		printUsage()
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Logs go to stderr so stdout stays clean for exports and MCP.
	logger, err := cli.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, logger, os.Stdout)

	// Route to command
	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "login":
		err = app.LoginCommand(ctx, commandArgs)
	case "read_contacts":
		err = app.ReadContactsCommand(ctx, commandArgs)
	case "sync_contacts":
		err = app.SyncContactsCommand(ctx, commandArgs)
	case "get_calendar_by_name":
		err = app.GetCalendarByNameCommand(ctx, commandArgs)
	case "export_ics":
		err = app.ExportICSCommand(ctx, commandArgs)
	case "browse":
		err = app.BrowseCommand(ctx, commandArgs)
	case "mcp":
		err = app.MCPCommand(ctx, commandArgs, version)
	case "help":
		printUsage()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		logger.Error("command failed", "command", command, "err", err)
		return 1
	}

	return 0
}

func printUsage() {
	fmt.Printf(`gcalsync v%s - Google Contacts birthdays in Google Calendar

USAGE:
  gcalsync [global flags] <command> [flags] [args]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/gcalsync/config.json)
  --log-level <level>    debug, info, warn, error (default: info)

COMMANDS:
  login                  Authorize gcalsync with your Google account
    --no-browser           Print the consent URL without opening a browser

  read_contacts          List contacts with birthday and next occurrence
    --birthdays-only       Skip contacts without a birthday

  sync_contacts [name]   Create yearly birthday events in calendar <name>
                         (default: contacts; "primary" uses native birthday events)
    --continue-on-error    Keep going when an event cannot be created

  get_calendar_by_name [name]
                         Print the id of the calendar called <name>
    --create               Create the calendar when it does not exist

  export_ics [file]      Write birthday events as iCalendar (stdout when no file)

  browse [name]          Interactive birthday browser; press s to sync to <name>

  mcp                    Start MCP server on stdio

CONFIGURATION:
  Client credentials are read from ~/.config/gcalsync/credentials.json or
  GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET. GCALSYNC_* variables and a .env
  file in the working directory override the config file.

EXAMPLES:
  gcalsync login
  gcalsync read_contacts
  gcalsync sync_contacts
  gcalsync sync_contacts primary
  gcalsync export_ics birthdays.ics
`, version)
}
