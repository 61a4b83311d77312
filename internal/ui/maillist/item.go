package maillist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
	"github.com/nhle/mailmind/internal/ui"
)

// EmailItem wraps a model.Email so it can be used in a bubbles/list.
type EmailItem struct {
	Email model.Email
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string { return i.Email.Subject }

// Title returns the email subject for the list.
func (i EmailItem) Title() string { return i.Email.Subject }

// Description returns a short summary line for the list.
func (i EmailItem) Description() string {
	parts := []string{
		i.Email.Sender,
		i.Email.Category.Label(),
		ui.RelativeTime(i.Email.Time, time.Now()),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering email rows.
type ItemDelegate struct {
	// now is overridable for deterministic rendering in tests.
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single email row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EmailItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(ei.Email, index == m.Index(), m.Width()))
}

func (d ItemDelegate) renderLine(e model.Email, isSelected bool, width int) string {
	now := time.Now
	if d.now != nil {
		now = d.now
	}

	badge := theme.CategoryStyle(e.Category).
		Width(12).
		Render(e.Category.Label())

	sender := lipgloss.NewStyle().
		Width(24).
		Render(ui.Truncate(e.Sender, 22))

	actions := ""
	if n := len(e.Actions); n > 0 {
		actions = lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Render(fmt.Sprintf(" [%d]", n))
	}

	timeStr := theme.MutedStyle.Render(ui.RelativeTime(e.Time, now()))

	subjectWidth := width - lipgloss.Width(badge) - lipgloss.Width(sender) -
		lipgloss.Width(actions) - lipgloss.Width(timeStr) - 6
	subject := ui.Truncate(e.Subject, subjectWidth)

	line := fmt.Sprintf("%s %s %s%s  %s", badge, sender, subject, actions, timeStr)

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
