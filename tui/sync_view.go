// ABOUTME: TUI view for running a birthday sync
// ABOUTME: Shows the target calendar, the last run's counters, and an activity log
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/gcalsync/sync"
)

var (
	syncHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	syncLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(14)

	syncIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	syncSyncingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)

	syncMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// maxSyncMessages bounds the activity log shown in the sync view.
const maxSyncMessages = 5

// SyncCompleteMsg is sent when a sync operation completes.
type SyncCompleteMsg struct {
	Result *sync.Result
	Error  error
}

func (m Model) renderSyncView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Birthday Sync"))
	s.WriteString("\n\n")

	s.WriteString(syncLabelStyle.Render("Calendar"))
	s.WriteString(m.opts.Calendar)
	s.WriteString("\n")

	s.WriteString(syncLabelStyle.Render("Status"))
	switch {
	case m.syncing:
		s.WriteString(syncSyncingStyle.Render(m.spinner.View() + " Syncing..."))
	case m.lastResult == nil:
		s.WriteString(syncMessageStyle.Render("Not synced yet"))
	default:
		s.WriteString(syncIdleStyle.Render("✓ Idle"))
	}
	s.WriteString("\n\n")

	if r := m.lastResult; r != nil {
		s.WriteString(syncHeaderStyle.Render("Last Run"))
		s.WriteString("\n\n")
		rows := [][2]string{
			{"Calendar ID", r.CalendarID},
			{"Seen", fmt.Sprintf("%d (%d without birthday)", r.Seen, r.NoBirthday)},
			{"Created", fmt.Sprintf("%d", r.Created)},
			{"Existing", fmt.Sprintf("%d", r.Duplicates)},
			{"Failed", fmt.Sprintf("%d", r.Failed)},
		}
		for _, row := range rows {
			s.WriteString("  " + syncLabelStyle.Render(row[0]) + row[1] + "\n")
		}
		s.WriteString("\n")
	}

	if len(m.syncMessages) > 0 {
		s.WriteString(syncHeaderStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		start := max(len(m.syncMessages)-maxSyncMessages, 0)
		for _, line := range m.syncMessages[start:] {
			s.WriteString(syncMessageStyle.Render("  " + line))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(m.renderSyncHelp())

	return s.String()
}

func (m Model) renderSyncHelp() string {
	help := []string{
		"Enter: Sync now",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.syncing || m.opts.Sync == nil {
			return m, nil
		}
		// State changes happen here; the Cmd only runs the sync.
		m.syncing = true
		m.addSyncMessage(fmt.Sprintf("Starting sync to %q...", m.opts.Calendar))
		return m, tea.Batch(m.spinner.Tick, m.runSync())
	case "esc":
		m.viewMode = ViewList
	}

	return m, nil
}

// runSync performs the sync off the update loop.
func (m Model) runSync() tea.Cmd {
	run := m.opts.Sync
	ctx := m.ctx
	calendar := m.opts.Calendar
	return func() tea.Msg {
		result, err := run(ctx, calendar)
		return SyncCompleteMsg{Result: result, Error: err}
	}
}

// addSyncMessage adds a message to the sync message log.
func (m *Model) addSyncMessage(msg string) {
	timestamp := m.opts.Clock.Now().Format("15:04:05")
	m.syncMessages = append(m.syncMessages, fmt.Sprintf("[%s] %s", timestamp, msg))
}

// handleSyncComplete handles sync completion messages.
func (m *Model) handleSyncComplete(msg SyncCompleteMsg) {
	m.syncing = false
	if msg.Result != nil {
		m.lastResult = msg.Result
	}

	if msg.Error != nil {
		m.addSyncMessage(fmt.Sprintf("✗ sync failed: %v", msg.Error))
		return
	}

	r := msg.Result
	if r == nil {
		m.addSyncMessage("✓ sync completed")
		return
	}
	m.addSyncMessage(fmt.Sprintf("✓ created %d, %d already present", r.Created, r.Duplicates))
	if r.FetchErr != nil {
		m.addSyncMessage(fmt.Sprintf("! contact listing stopped early: %v", r.FetchErr))
	}
}
