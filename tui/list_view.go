package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/gcalsync/models"
	"github.com/harperreed/gcalsync/sync"
)

// ContactsLoadedMsg carries the result of a contact load.
type ContactsLoadedMsg struct {
	Contacts []models.Contact
	Error    error
}

func contactColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Birthday", Width: 12},
		{Title: "Next", Width: 12},
		{Title: "Event ID", Width: 20},
	}
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("BIRTHDAYS"))
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString(m.spinner.View() + " Loading contacts...")
	case m.loadErr != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.loadErr)))
	case len(m.contacts) == 0:
		s.WriteString(syncMessageStyle.Render("No contacts found."))
	default:
		s.WriteString(m.table.View())
		s.WriteString("\n")
		s.WriteString(syncMessageStyle.Render(m.summary()))
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) summary() string {
	withBirthday := 0
	for _, c := range m.contacts {
		if c.Birthday != nil {
			withBirthday++
		}
	}
	return fmt.Sprintf("%d contact(s), %d with birthday", len(m.contacts), withBirthday)
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"s: Sync",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.viewMode = ViewSync
		return m, nil
	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.loadErr = nil
		return m, tea.Batch(m.spinner.Tick, m.loadContacts())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// loadContacts fetches contacts off the update loop.
func (m Model) loadContacts() tea.Cmd {
	load := m.opts.Load
	ctx := m.ctx
	return func() tea.Msg {
		if load == nil {
			return ContactsLoadedMsg{}
		}
		contacts, err := load(ctx)
		return ContactsLoadedMsg{Contacts: contacts, Error: err}
	}
}

func (m *Model) handleContactsLoaded(msg ContactsLoadedMsg) {
	m.loading = false
	m.loadErr = msg.Error
	m.contacts = msg.Contacts
	m.table.SetRows(m.contactRows())
	m.table.SetCursor(0)
}

func (m Model) contactRows() []table.Row {
	now := m.opts.Clock.Now()
	rows := make([]table.Row, 0, len(m.contacts))
	for _, c := range m.contacts {
		birthday, next, eventID := "No Birthday", "-", "-"
		if c.Birthday != nil {
			birthday = c.Birthday.String()
			eventID = sync.EventID(c.ResourceName)
			if occurrence, err := sync.NextOccurrence(*c.Birthday, now, m.opts.Location); err == nil {
				next = occurrence.Format("2006-01-02")
			}
		}
		rows = append(rows, table.Row{c.Name, birthday, next, eventID})
	}
	return rows
}
