// Package maillist renders the inbox. It owns no mail state: the parent
// pushes the resolved list in with SetEmails and reacts to the messages
// this view emits.
package maillist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
)

// OpenMsg is sent when the user opens an email.
type OpenMsg struct {
	ID string
}

// FilterChangedMsg carries the new local filter term.
type FilterChangedMsg struct {
	Term string
}

// SearchRequestMsg asks the parent to run an AI search.
type SearchRequestMsg struct {
	Query string
}

// ClearOverlayMsg asks the parent to drop AI search results.
type ClearOverlayMsg struct{}

// ToggleOrderMsg asks the parent to flip between date and category order.
type ToggleOrderMsg struct{}

type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modeSearch
)

// State describes how the current list was produced.
type State struct {
	Overlay    bool
	Searching  bool
	ByCategory bool
	Filter     string
}

// Model is the inbox list view component.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	input  textinput.Model
	mode   inputMode
	state  State
	width  int
	height int
}

// New creates a new inbox list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	ti := textinput.New()
	ti.Width = width - 4

	return Model{
		list:   l,
		keys:   k,
		input:  ti,
		width:  width,
		height: height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// SetEmails replaces the rows shown, keeping the cursor on the same
// email when it is still present.
func (m *Model) SetEmails(emails []model.Email, state State) tea.Cmd {
	prev := m.SelectedID()

	items := make([]list.Item, len(emails))
	cursor := 0
	for i, e := range emails {
		items[i] = EmailItem{Email: e}
		if e.ID == prev {
			cursor = i
		}
	}
	m.state = state
	m.list.Title = m.title()
	cmd := m.list.SetItems(items)
	m.list.Select(cursor)
	return cmd
}

// SelectedID returns the id of the email under the cursor, or "".
func (m Model) SelectedID() string {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return ""
	}
	return item.Email.ID
}

// Len returns the number of rows shown.
func (m Model) Len() int { return len(m.list.Items()) }

// Typing reports whether a text input has focus, so the parent does not
// treat keystrokes as global shortcuts.
func (m Model) Typing() bool { return m.mode != modeNormal }

// Update handles messages for the inbox list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.mode != modeNormal {
			return m.handleInputKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleInputKeys processes key input while the filter or search box is open.
func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		mode := m.mode
		value := m.input.Value()
		m.mode = modeNormal
		m.input.Blur()
		if mode == modeFilter {
			return m, emit(FilterChangedMsg{Term: value})
		}
		if value == "" {
			return m, nil
		}
		return m, emit(SearchRequestMsg{Query: value})

	case "esc":
		mode := m.mode
		m.mode = modeNormal
		m.input.Blur()
		m.input.Reset()
		if mode == modeFilter {
			return m, emit(FilterChangedMsg{Term: ""})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		id := m.SelectedID()
		if id == "" {
			return m, nil
		}
		return m, emit(OpenMsg{ID: id})

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.input.Reset()
		m.input.Prompt = "/ "
		m.input.Placeholder = "filter by subject, sender or body..."
		m.input.SetValue(m.state.Filter)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.input.Reset()
		m.input.Prompt = "AI search: "
		m.input.Placeholder = "describe the emails you are looking for..."
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.state.Overlay {
			return m, emit(ClearOverlayMsg{})
		}
		if m.state.Filter != "" {
			return m, emit(FilterChangedMsg{Term: ""})
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		return m, emit(ToggleOrderMsg{})
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m Model) title() string {
	switch {
	case m.state.Overlay:
		return "Search results"
	case m.state.ByCategory:
		return "Inbox by category"
	default:
		return "Inbox"
	}
}

// View renders the inbox list view.
func (m Model) View() string {
	var top []string

	if m.mode != modeNormal {
		top = append(top, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.input.View()))
	}
	if m.state.Searching {
		top = append(top, theme.OverlayBannerStyle.Render("Searching with AI..."))
	} else if m.state.Overlay {
		top = append(top, theme.OverlayBannerStyle.Render("Showing AI search results. Press esc to return to the inbox."))
	} else if m.state.Filter != "" && m.mode == modeNormal {
		top = append(top, theme.MutedStyle.Padding(0, 1).Render("Filter: "+m.state.Filter))
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState(len(top))
	}

	if len(top) == 0 {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(top, body)...)
}

// renderEmptyState shows guidance text when no emails are listed.
func (m Model) renderEmptyState(reserved int) string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-reserved).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.state.Searching:
		return style.Render("")
	case m.state.Overlay:
		return style.Render("No emails matched the search.")
	case m.state.Filter != "":
		return style.Render("No matching emails.\nPress esc to clear the filter.")
	default:
		return style.Render(
			"No emails yet.\n\n" +
				"Press u to upload a file or i to import from IMAP.",
		)
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.input.Width = width - 4
}
