// ABOUTME: Data models for birthday sync
// ABOUTME: Defines Contact, Birthday, and EventDraft value types
package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPartialDate = errors.New("birthday is missing year, month, or day")
	ErrInvalidDate = errors.New("birthday is not a calendar date")
)

// Birthday is a civil date with no time-of-day or zone.
type Birthday struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// NewBirthday builds a Birthday from the three components reported by the
// contacts directory. Every component must be present. Feb 29 is accepted
// in any year since directories record it regardless of the birth year.
func NewBirthday(year, month, day int) (Birthday, error) {
	if year <= 0 || month <= 0 || day <= 0 {
		return Birthday{}, ErrPartialDate
	}
	if month > 12 || day > maxDay(time.Month(month)) {
		return Birthday{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}

	return Birthday{Year: year, Month: time.Month(month), Day: day}, nil
}

func maxDay(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// IsLeapDay reports whether the birthday falls on Feb 29.
func (b Birthday) IsLeapDay() bool {
	return b.Month == time.February && b.Day == 29
}

// Date returns midnight of the birthday in loc. A leap-day birthday in a
// non-leap year is clamped to Feb 28 rather than rolling into March.
func (b Birthday) Date(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	day := b.Day
	if b.IsLeapDay() && !isLeapYear(b.Year) {
		day = 28
	}
	return time.Date(b.Year, b.Month, day, 0, 0, 0, 0, loc)
}

// String renders the birthday as YYYY-MM-DD.
func (b Birthday) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", b.Year, int(b.Month), b.Day)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Contact is a normalized directory entry. Name is never empty.
type Contact struct {
	ResourceName string    `json:"resource_name"`
	Name         string    `json:"name"`
	Birthday     *Birthday `json:"birthday,omitempty"`
}

func (c Contact) String() string {
	if c.Birthday == nil {
		return c.Name + " - No Birthday"
	}
	return c.Name + " - " + c.Birthday.String()
}

// Variant selects which attribute set an EventDraft carries.
type Variant string

const (
	VariantGeneric        Variant = "generic"
	VariantNativeBirthday Variant = "native_birthday"
)

// Fixed event attributes.
const (
	VisibilityPrivate       = "private"
	TransparencyTransparent = "transparent"
	EventTypeBirthday       = "birthday"
)

// EventDraft is a calendar event ready for submission.
type EventDraft struct {
	ID           string            `json:"id"`
	Summary      string            `json:"summary"`
	Date         Birthday          `json:"date"`
	TimeZone     string            `json:"time_zone"`
	Recurrence   string            `json:"recurrence"`
	Visibility   string            `json:"visibility"`
	Transparency string            `json:"transparency"`
	Variant      Variant           `json:"variant"`
	EventType    string            `json:"event_type,omitempty"`
	BirthdayType string            `json:"birthday_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// IsNative reports whether the draft uses the native birthday event type.
func (d *EventDraft) IsNative() bool {
	return d.Variant == VariantNativeBirthday
}

// Validate checks that the native birthday markers and the metadata block
// are never combined.
func (d *EventDraft) Validate() error {
	switch d.Variant {
	case VariantNativeBirthday:
		if d.Metadata != nil {
			return fmt.Errorf("native birthday event %s must not carry metadata", d.ID)
		}
		if d.EventType != EventTypeBirthday {
			return fmt.Errorf("native birthday event %s is missing event type", d.ID)
		}
	case VariantGeneric:
		if d.EventType != "" || d.BirthdayType != "" {
			return fmt.Errorf("generic event %s must not carry birthday markers", d.ID)
		}
	default:
		return fmt.Errorf("unknown event variant %q", d.Variant)
	}
	return nil
}
