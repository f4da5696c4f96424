package sync

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// PrimaryCalendar is the API alias for the account's default calendar.
const PrimaryCalendar = "primary"

// FindCalendar looks up a calendar by exact display name. The first match
// wins. "primary" resolves without an API call.
func FindCalendar(ctx context.Context, dir CalendarDirectory, name string) (string, bool, error) {
	if name == PrimaryCalendar {
		return PrimaryCalendar, true, nil
	}

	calendars, err := dir.ListCalendars(ctx)
	if err != nil {
		return "", false, err
	}

	for _, cal := range calendars {
		if cal.Summary == name {
			return cal.ID, true, nil
		}
	}

	return "", false, nil
}

// ResolveCalendar finds the named calendar or creates it in timeZone.
func ResolveCalendar(ctx context.Context, dir CalendarDirectory, name, timeZone string, logger *log.Logger) (string, error) {
	id, found, err := FindCalendar(ctx, dir, name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrCalendarResolution, name, err)
	}
	if found {
		logger.Info("calendar found", "calendar", name, "id", id)
		return id, nil
	}

	logger.Info("calendar does not exist, creating it", "calendar", name, "time_zone", timeZone)
	id, err = dir.CreateCalendar(ctx, name, timeZone)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrCalendarResolution, name, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: %q: created calendar has no id", ErrCalendarResolution, name)
	}

	logger.Info("created calendar", "calendar", name, "id", id)
	return id, nil
}
