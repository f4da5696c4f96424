// ABOUTME: Birthday sync CLI commands
// ABOUTME: Implements sync_contacts and get_calendar_by_name against Google Calendar
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/gcalsync/sync"
)

// SyncContactsCommand creates birthday events for every contact with a
// birthday in the named calendar.
func (a *App) SyncContactsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync_contacts", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	continueOnError := fs.Bool("continue-on-error", a.Config.ContinueOnError, "Keep going when an event cannot be created")
	if err := fs.Parse(args); err != nil {
		return err
	}

	calendarName := a.Config.DefaultCalendar
	if fs.NArg() > 0 {
		calendarName = fs.Arg(0)
	}

	connector, err := a.connector()
	if err != nil {
		return err
	}

	syncer := sync.NewSyncer(connector, sync.Options{
		TimeZone:        a.Config.TimeZone,
		PageSize:        a.Config.PageSize,
		ContinueOnError: *continueOnError,
		Clock:           a.Clock,
	}, a.Logger)

	a.printf("Syncing birthdays to calendar %q...\n", calendarName)
	result, err := syncer.Run(ctx, calendarName)
	if result != nil && result.CalendarID != "" {
		a.step("Calendar: %s", result.CalendarID)
	}
	if err != nil {
		if result != nil && (result.Created > 0 || result.Duplicates > 0) {
			a.step("%d created, %d already present before the failure", result.Created, result.Duplicates)
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	a.step("Contacts seen: %d (%d without birthday)", result.Seen, result.NoBirthday)
	a.ok("Created %d birthday event(s)", result.Created)
	if result.Duplicates > 0 {
		a.ok("Skipped %d event(s) that already exist", result.Duplicates)
	}
	if result.FetchErr != nil {
		a.warn("Contact listing stopped early: %v", result.FetchErr)
	}

	return nil
}

// GetCalendarByNameCommand prints the id of the named calendar.
func (a *App) GetCalendarByNameCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get_calendar_by_name", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	create := fs.Bool("create", false, "Create the calendar when it does not exist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name := a.Config.DefaultCalendar
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}

	connector, err := a.connector()
	if err != nil {
		return err
	}

	backend, err := connector.Connect(ctx)
	if err != nil {
		return err
	}

	if *create {
		id, err := sync.ResolveCalendar(ctx, backend, name, a.Config.TimeZone, a.Logger)
		if err != nil {
			return err
		}
		a.ok("Calendar %s: %s", name, id)
		return nil
	}

	id, found, err := sync.FindCalendar(ctx, backend, name)
	if err != nil {
		return fmt.Errorf("failed to list calendars: %w", err)
	}
	if !found {
		a.printf("Calendar not found\n")
		return nil
	}

	a.ok("Calendar found for name %s: %s", name, id)
	return nil
}
