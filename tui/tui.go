// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Interactive birthday browser with a one-key sync into Google Calendar
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewSync
)

// ContactLoader fetches every contact to browse.
type ContactLoader func(ctx context.Context) ([]models.Contact, error)

// SyncRunner syncs birthdays into the named calendar.
type SyncRunner func(ctx context.Context, calendar string) (*sync.Result, error)

// Options configures a Model.
type Options struct {
	Load     ContactLoader
	Sync     SyncRunner
	Calendar string
	Location *time.Location
	Clock    sync.Clock
}

// Model is the main bubbletea model
type Model struct {
	ctx  context.Context
	opts Options

	viewMode ViewMode

	// List view state
	contacts []models.Contact
	table    table.Model
	loading  bool
	loadErr  error

	// Sync view state
	spinner      spinner.Model
	syncing      bool
	lastResult   *sync.Result
	syncMessages []string

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = sync.RealClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	t := table.New(
		table.WithColumns(contactColumns()),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = syncSyncingStyle

	return Model{
		ctx:      ctx,
		opts:     opts,
		viewMode: ViewList,
		table:    t,
		loading:  true,
		spinner:  s,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadContacts())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil
	case ContactsLoadedMsg:
		m.handleContactsLoaded(msg)
		return m, nil
	case SyncCompleteMsg:
		m.handleSyncComplete(msg)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewSync:
		return m.renderSyncView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewSync:
		return m.handleSyncKeys(msg)
	}

	return m, nil
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
