// Package drafts lists saved drafts with a preview of the one under the
// cursor.
package drafts

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/listview"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
	"github.com/nhle/mailmind/internal/ui"
)

// CloseMsg signals the parent to leave the drafts view.
type CloseMsg struct{}

// RefreshMsg asks the parent to fetch drafts again.
type RefreshMsg struct{}

// DraftItem wraps a model.Draft so it can be used in a bubbles/list.
type DraftItem struct {
	Draft model.Draft
}

func (i DraftItem) FilterValue() string { return i.Draft.Subject }

// itemDelegate renders one draft per line.
type itemDelegate struct {
	now func() time.Time
}

func (d itemDelegate) Height() int { return 1 }
func (d itemDelegate) Spacing() int { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(DraftItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(di.Draft, index == m.Index()))
}

func (d itemDelegate) renderLine(dr model.Draft, isSelected bool) string {
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}

	badge := theme.DraftBadgeStyle.Render("Draft")
	to := lipgloss.NewStyle().Width(26).Render(ui.Truncate(dr.Recipient, 24))
	when := theme.MutedStyle.Render(ui.RelativeTime(dr.DisplayTime(now), now))

	line := fmt.Sprintf("%s %s %s  %s", badge, to, dr.Subject, when)
	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// Model is the drafts view component.
type Model struct {
	drafts *listview.Drafts
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a drafts view reading from d.
func New(d *listview.Drafts, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, listHeight(height))
	l.Title = "Drafts"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		drafts: d,
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

func listHeight(height int) int {
	h := height / 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Refresh rebuilds the rows from the drafts list.
func (m *Model) Refresh() tea.Cmd {
	items := m.drafts.Items()
	rows := make([]list.Item, len(items))
	for i, d := range items {
		rows[i] = DraftItem{Draft: d}
	}
	if m.drafts.Recency() {
		m.list.Title = "Drafts (newest first)"
	} else {
		m.list.Title = "Drafts"
	}
	return m.list.SetItems(rows)
}

// Update handles messages for the drafts view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }

		case key.Matches(msg, m.keys.CycleSort):
			m.drafts.ToggleRecency()
			m.list.Select(0)
			return m, m.Refresh()

		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the drafts view.
func (m Model) View() string {
	switch {
	case m.drafts.Loading() && m.drafts.Len() == 0:
		return m.centered("Loading drafts...")
	case m.drafts.Len() == 0:
		return m.centered("No drafts yet.\n\nPress c to compose one.")
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), m.renderPreview())
}

func (m Model) renderPreview() string {
	item, ok := m.list.SelectedItem().(DraftItem)
	if !ok {
		return ""
	}
	d := item.Draft
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(d.Subject)
	meta := theme.MutedStyle.Render("To: " + d.Recipient)

	height := m.height - listHeight(m.height) - 4
	if height < 3 {
		height = 3
	}
	return theme.BorderStyle.
		Width(m.width - 2).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, meta, "", d.Body))
}

func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// SetSize updates the drafts view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
}
