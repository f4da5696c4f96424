// ABOUTME: Error taxonomy for birthday sync
// ABOUTME: Sentinel errors and typed insertion failures inspected with errors.Is/As
package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrReauthenticate means the saved credential is missing, invalid, or
	// could not be refreshed. The user must run the login command again.
	ErrReauthenticate = errors.New("google credentials are missing or expired, run 'gcalsync login' again")

	// ErrCalendarResolution means the target calendar was neither found nor
	// created.
	ErrCalendarResolution = errors.New("calendar could not be found or created")

	// ErrDuplicateEvent means an event with the same identity already exists
	// in the target calendar.
	ErrDuplicateEvent = errors.New("event already exists")

	// ErrNoClientCredentials means no OAuth client is configured.
	ErrNoClientCredentials = errors.New("google OAuth client not configured, provide credentials.json or set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")

	// ErrTokenNotFound means the token store holds no token yet.
	ErrTokenNotFound = errors.New("no saved token")
)

// InsertionError reports an event insert that failed for a reason other
// than a duplicate.
type InsertionError struct {
	Contact string
	EventID string
	Err     error
}

func (e *InsertionError) Error() string {
	return fmt.Sprintf("failed to create birthday event %s for %q: %v", e.EventID, e.Contact, e.Err)
}

func (e *InsertionError) Unwrap() error {
	return e.Err
}
