// ABOUTME: Maps contacts with birthdays to calendar event drafts
// ABOUTME: Builds event identity, yearly recurrence with leap-day rule, and the two event variants
package sync

import (
	"strings"
	"time"

	"github.com/harperreed/gcalsync/config"
	"github.com/harperreed/gcalsync/models"
)

const (
	// EventIDPrefix is prepended to every birthday event identity.
	EventIDPrefix = "b"

	// ProvenanceTag marks generic events as created by this tool.
	ProvenanceTag = config.AppName

	peopleNamespace = "people/"

	yearlyRule  = "FREQ=YEARLY"
	leapDayRule = "FREQ=YEARLY;BYMONTH=2;BYMONTHDAY=-1"
)

// Metadata keys recorded on generic events.
const (
	MetaContact    = "contact"
	MetaPersonName = "person_name"
	MetaCreatedBy  = "created_by"
	MetaCreatedAt  = "created_at"
	MetaSyncRun    = "sync_run"
)

// EventMapper turns contacts into event drafts.
type EventMapper struct {
	TimeZone string
	Clock    Clock

	// RunID is recorded on generic events when set.
	RunID string
}

// NewEventMapper creates a mapper for the given time zone.
func NewEventMapper(timeZone string) *EventMapper {
	return &EventMapper{
		TimeZone: timeZone,
		Clock:    RealClock{},
	}
}

// EventID derives the stable event identity for a contact resource name.
func EventID(resourceName string) string {
	return EventIDPrefix + strings.ReplaceAll(resourceName, peopleNamespace, "")
}

// RecurrenceRule returns the yearly rule for a birthday. Feb 29 anchors to
// the last day of February so the event still shows in common years.
func RecurrenceRule(b models.Birthday) string {
	if b.IsLeapDay() {
		return leapDayRule
	}
	return yearlyRule
}

// Map builds the draft for a contact. It returns false when the contact has
// no birthday. native selects the birthday event type used on the primary
// calendar.
func (m *EventMapper) Map(contact models.Contact, native bool) (*models.EventDraft, bool) {
	if contact.Birthday == nil {
		return nil, false
	}

	draft := &models.EventDraft{
		ID:           EventID(contact.ResourceName),
		Date:         *contact.Birthday,
		TimeZone:     m.TimeZone,
		Recurrence:   RecurrenceRule(*contact.Birthday),
		Visibility:   models.VisibilityPrivate,
		Transparency: models.TransparencyTransparent,
	}

	if native {
		draft.Variant = models.VariantNativeBirthday
		draft.Summary = contact.Name
		draft.EventType = models.EventTypeBirthday
		draft.BirthdayType = models.EventTypeBirthday
		return draft, true
	}

	draft.Variant = models.VariantGeneric
	draft.Summary = "Birthday: " + contact.Name
	draft.Metadata = map[string]string{
		MetaContact:    contact.ResourceName,
		MetaPersonName: contact.Name,
		MetaCreatedBy:  ProvenanceTag,
		MetaCreatedAt:  m.now().Format(time.RFC3339),
	}
	if m.RunID != "" {
		draft.Metadata[MetaSyncRun] = m.RunID
	}

	return draft, true
}

func (m *EventMapper) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock.Now()
}
