// ABOUTME: iCalendar export of birthday event drafts
// ABOUTME: Encodes generic drafts as recurring all-day VEVENTs with go-ical
package sync

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/harperreed/gcalsync/models"
)

const (
	icalProductID = "-//gcalsync//Birthday Export//EN"
	icalCalName   = "Birthdays"
	icalUIDDomain = "gcalsync"

	// icalXPrefix namespaces draft metadata on exported events.
	icalXPrefix = "X-GCALSYNC-"

	// go-ical refuses to encode a VCALENDAR without child components.
	stubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + icalProductID + "\r\nEND:VCALENDAR\r\n"
)

// ExportICS writes drafts as an iCalendar document. now stamps DTSTAMP.
func ExportICS(w io.Writer, drafts []*models.EventDraft, now time.Time) error {
	if len(drafts) == 0 {
		_, err := io.WriteString(w, stubVCalendar)
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText("X-WR-CALNAME", icalCalName)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, draft := range drafts {
		event, err := draftToEvent(draft)
		if err != nil {
			return err
		}
		event.Props.Set(stamp)
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode iCalendar data: %w", err)
	}
	return nil
}

func draftToEvent(draft *models.EventDraft) (*ical.Event, error) {
	loc, err := time.LoadLocation(draft.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", draft.TimeZone, err)
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, draft.ID+"@"+icalUIDDomain)
	event.Props.SetText(ical.PropSummary, draft.Summary)

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetDate(draft.Date.Date(loc))
	event.Props.Set(start)

	// The rule is already in wire form; SetText would escape its semicolons.
	rule := ical.NewProp(ical.PropRecurrenceRule)
	rule.Value = draft.Recurrence
	event.Props.Set(rule)

	event.Props.SetText(ical.PropClass, strings.ToUpper(draft.Visibility))
	event.Props.SetText(ical.PropTransparency, strings.ToUpper(draft.Transparency))

	for _, key := range []string{MetaContact, MetaCreatedBy, MetaSyncRun} {
		if v := draft.Metadata[key]; v != "" {
			event.Props.SetText(icalXPrefix+strings.ToUpper(strings.ReplaceAll(key, "_", "-")), v)
		}
	}

	return event, nil
}
