package sync

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/harperreed/gcalsync/models"
)

// NextOccurrence returns the first occurrence of the birthday's yearly rule
// on or after the day containing after, evaluated in loc.
func NextOccurrence(b models.Birthday, after time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	opt, err := rrule.StrToROption(RecurrenceRule(b))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse recurrence rule: %w", err)
	}
	opt.Dtstart = b.Date(loc)

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	local := after.In(loc)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	next := rule.After(startOfDay, true)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no occurrence of %s after %s", b, startOfDay.Format("2006-01-02"))
	}
	return next, nil
}
