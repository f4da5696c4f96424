// ABOUTME: Birthday sync orchestrator
// ABOUTME: Drives authentication, calendar resolution, and idempotent event insertion per contact
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
)

// State is a step of a sync run.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateCalendarResolved
	StateSyncing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateCalendarResolved:
		return "calendar_resolved"
	case StateSyncing:
		return "syncing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Syncer.
type Options struct {
	TimeZone        string
	PageSize        int64
	ContinueOnError bool
	Clock           Clock

	// RunID overrides the generated run identifier.
	RunID string
}

// Result summarizes a sync run.
type Result struct {
	RunID      string
	CalendarID string
	Native     bool

	Seen         int
	WithBirthday int
	NoBirthday   int
	Created      int
	Duplicates   int
	Failed       int

	Failures []*InsertionError

	// FetchErr is the error that ended contact pagination early, if any.
	// It does not fail the run.
	FetchErr error
}

// Syncer copies contact birthdays into a calendar.
type Syncer struct {
	connector Connector
	opts      Options
	logger    *log.Logger
	state     State
}

// NewSyncer creates a Syncer.
func NewSyncer(connector Connector, opts Options, logger *log.Logger) *Syncer {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &Syncer{
		connector: connector,
		opts:      opts,
		logger:    logger.With("component", "syncer"),
		state:     StateUnauthenticated,
	}
}

// State returns the current state.
func (s *Syncer) State() State {
	return s.state
}

// Run syncs every contact birthday into the calendar named calendarName,
// creating the calendar when missing. "primary" targets the user's
// primary calendar with native birthday events.
func (s *Syncer) Run(ctx context.Context, calendarName string) (*Result, error) {
	runID := s.opts.RunID
	if runID == "" {
		runID = ulid.Make().String()
	}
	logger := s.logger.With("run_id", runID)
	result := &Result{RunID: runID}
	s.state = StateUnauthenticated

	backend, err := s.connector.Connect(ctx)
	if err != nil {
		if !errors.Is(err, ErrReauthenticate) {
			err = fmt.Errorf("%w: %w", ErrReauthenticate, err)
		}
		s.fail(logger, err)
		return result, err
	}
	s.transition(logger, StateAuthenticated)

	calendarID, err := ResolveCalendar(ctx, backend, calendarName, s.opts.TimeZone, logger)
	if err != nil {
		s.fail(logger, err)
		return result, err
	}
	result.CalendarID = calendarID
	result.Native = calendarName == PrimaryCalendar
	s.transition(logger, StateCalendarResolved)

	mapper := NewEventMapper(s.opts.TimeZone)
	mapper.Clock = s.opts.Clock
	mapper.RunID = runID

	pipeline := NewContactPipeline(backend, s.opts.PageSize, logger)
	s.transition(logger, StateSyncing)

	for contact := range pipeline.Contacts(ctx) {
		result.Seen++

		draft, ok := mapper.Map(contact, result.Native)
		if !ok {
			result.NoBirthday++
			logger.Debug("skipping contact without birthday", "contact", contact.Name)
			continue
		}
		result.WithBirthday++

		link, err := backend.InsertEvent(ctx, calendarID, draft)
		switch {
		case err == nil:
			result.Created++
			logger.Info("created birthday event", "contact", contact.Name, "event_id", draft.ID, "link", link)
		case errors.Is(err, ErrDuplicateEvent):
			result.Duplicates++
			logger.Info("birthday event already exists", "contact", contact.Name, "event_id", draft.ID)
		default:
			insertErr := &InsertionError{Contact: contact.Name, EventID: draft.ID, Err: err}
			result.Failed++
			result.Failures = append(result.Failures, insertErr)
			if !s.opts.ContinueOnError {
				s.fail(logger, insertErr)
				return result, insertErr
			}
			logger.Error("failed to create birthday event", "contact", contact.Name, "event_id", draft.ID, "err", err)
		}
	}

	result.FetchErr = pipeline.Err()
	if err := ctx.Err(); err != nil {
		s.fail(logger, err)
		return result, err
	}

	if len(result.Failures) > 0 {
		errs := make([]error, 0, len(result.Failures))
		for _, f := range result.Failures {
			errs = append(errs, f)
		}
		err := fmt.Errorf("failed to create %d birthday events: %w", len(result.Failures), errors.Join(errs...))
		s.fail(logger, err)
		return result, err
	}

	s.transition(logger, StateDone)
	logger.Info("sync finished",
		"calendar", calendarID,
		"seen", result.Seen,
		"created", result.Created,
		"duplicates", result.Duplicates)

	return result, nil
}

func (s *Syncer) transition(logger *log.Logger, next State) {
	logger.Debug("state change", "from", s.state, "to", next)
	s.state = next
}

func (s *Syncer) fail(logger *log.Logger, err error) {
	logger.Error("sync failed", "state", s.state, "err", err)
	s.state = StateFailed
}
