// ABOUTME: Contact listing and iCalendar export CLI commands
// ABOUTME: Implements read_contacts and export_ics over the contact pipeline
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

// ReadContactsCommand lists contacts with their birthdays.
func (a *App) ReadContactsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("read_contacts", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	onlyBirthdays := fs.Bool("birthdays-only", false, "Only list contacts with a known birthday")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, err := a.contactSource(ctx)
	if err != nil {
		return err
	}

	pipeline := sync.NewContactPipeline(source, a.Config.PageSize, a.Logger)
	loc := a.Config.Location()
	now := a.Clock.Now()

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, a.render(headerStyle, "NAME\tBIRTHDAY\tNEXT"))
	_, _ = fmt.Fprintln(w, "----\t--------\t----")

	total, withBirthday := 0, 0
	for contact := range pipeline.Contacts(ctx) {
		if contact.Birthday == nil && *onlyBirthdays {
			continue
		}
		total++

		birthday, next := "No Birthday", "-"
		if contact.Birthday != nil {
			withBirthday++
			birthday = contact.Birthday.String()
			if occurrence, err := sync.NextOccurrence(*contact.Birthday, now, loc); err == nil {
				next = occurrence.Format("2006-01-02")
			} else {
				a.Logger.Debug("failed to compute next occurrence", "contact", contact.Name, "err", err)
			}
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", contact.Name, birthday, next)
	}
	_ = w.Flush()

	a.printf("\nTotal: %d contact(s), %d with birthday\n", total, withBirthday)
	if err := pipeline.Err(); err != nil {
		a.warn("Contact listing stopped early: %v", err)
	}

	return nil
}

// ExportICSCommand writes birthday events as an iCalendar file.
func (a *App) ExportICSCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export_ics", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, err := a.contactSource(ctx)
	if err != nil {
		return err
	}

	drafts, stopped := a.buildDrafts(ctx, source)

	if fs.NArg() == 0 {
		if err := sync.ExportICS(a.Out, drafts, a.Clock.Now()); err != nil {
			return err
		}
		// stdout carries the calendar, so the warning goes to the log.
		if stopped != nil {
			a.Logger.Warn("contact listing stopped early", "exported", len(drafts), "err", stopped)
		}
		return nil
	}

	path := fs.Arg(0)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeAndClose(f, drafts, a.Clock.Now()); err != nil {
		return err
	}

	a.ok("Exported %d birthday(s) to %s", len(drafts), path)
	if stopped != nil {
		a.warn("Contact listing stopped early: %v", stopped)
	}
	return nil
}

func (a *App) buildDrafts(ctx context.Context, source sync.ContactSource) ([]*models.EventDraft, error) {
	pipeline := sync.NewContactPipeline(source, a.Config.PageSize, a.Logger)
	mapper := sync.NewEventMapper(a.Config.TimeZone)
	mapper.Clock = a.Clock

	var drafts []*models.EventDraft
	for contact := range pipeline.Contacts(ctx) {
		if draft, ok := mapper.Map(contact, false); ok {
			drafts = append(drafts, draft)
		}
	}
	return drafts, pipeline.Err()
}

func writeAndClose(f io.WriteCloser, drafts []*models.EventDraft, now time.Time) error {
	if err := sync.ExportICS(f, drafts, now); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	return nil
}
