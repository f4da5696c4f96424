package sync

import (
	"context"

	"google.golang.org/api/option"
)

// Backend bundles every upstream capability the sync needs.
type Backend interface {
	ContactSource
	CalendarDirectory
	EventSink
}

// Connector authenticates and returns a ready Backend.
type Connector interface {
	Connect(ctx context.Context) (Backend, error)
}

// GoogleConnector connects to the People and Calendar APIs with the saved
// OAuth token. When ContactsFile is set, contacts come from that vCard
// file instead of the People API.
type GoogleConnector struct {
	Auth         *Authenticator
	ContactsFile string
	Options      []option.ClientOption
}

type googleBackend struct {
	ContactSource
	*GoogleCalendar
}

// Connect builds authorized API clients. Credential problems are reported
// as ErrReauthenticate.
func (c *GoogleConnector) Connect(ctx context.Context) (Backend, error) {
	client, err := c.Auth.Client(ctx)
	if err != nil {
		return nil, err
	}

	calendarService, err := NewCalendarClient(ctx, client, c.Options...)
	if err != nil {
		return nil, err
	}

	var contacts ContactSource
	if c.ContactsFile != "" {
		contacts = NewVCardSource(c.ContactsFile)
	} else {
		peopleService, err := NewPeopleClient(ctx, client, c.Options...)
		if err != nil {
			return nil, err
		}
		contacts = NewPeopleSource(peopleService)
	}

	return &googleBackend{
		ContactSource:  contacts,
		GoogleCalendar: NewGoogleCalendar(calendarService),
	}, nil
}

// OpenContactSource returns the contacts to read. A configured vCard file
// is read directly and needs no login.
func OpenContactSource(ctx context.Context, connector Connector, contactsFile string) (ContactSource, error) {
	if contactsFile != "" {
		return NewVCardSource(contactsFile), nil
	}

	backend, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return backend, nil
}
