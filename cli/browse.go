// ABOUTME: Interactive birthday browser command
// ABOUTME: Loads contacts into the TUI and wires its sync key to the Syncer
package cli

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
	"github.com/harperreed/gcalsync/tui"
)

// ErrNotTerminal is returned when browse is started without a terminal.
var ErrNotTerminal = errors.New("browse needs an interactive terminal")

// BrowseCommand opens the full-screen birthday browser.
func (a *App) BrowseCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !a.color {
		return ErrNotTerminal
	}

	calendarName := a.Config.DefaultCalendar
	if fs.NArg() > 0 {
		calendarName = fs.Arg(0)
	}

	return tui.Run(ctx, tui.NewModel(ctx, a.browseOptions(calendarName)))
}

// browseOptions builds the TUI callbacks. Logging is discarded while the
// alternate screen is active.
func (a *App) browseOptions(calendarName string) tui.Options {
	quiet := log.New(io.Discard)

	return tui.Options{
		Load: func(ctx context.Context) ([]models.Contact, error) {
			source, err := a.contactSource(ctx)
			if err != nil {
				return nil, err
			}
			pipeline := sync.NewContactPipeline(source, a.Config.PageSize, quiet)
			contacts := pipeline.Collect(ctx)
			if err := pipeline.Err(); err != nil && len(contacts) == 0 {
				return nil, err
			}
			return contacts, nil
		},
		Sync: func(ctx context.Context, calendar string) (*sync.Result, error) {
			connector, err := a.connector()
			if err != nil {
				return nil, err
			}
			syncer := sync.NewSyncer(connector, sync.Options{
				TimeZone:        a.Config.TimeZone,
				PageSize:        a.Config.PageSize,
				ContinueOnError: a.Config.ContinueOnError,
				Clock:           a.Clock,
			}, quiet)
			return syncer.Run(ctx, calendar)
		},
		Calendar: calendarName,
		Location: a.Config.Location(),
		Clock:    a.Clock,
	}
}
