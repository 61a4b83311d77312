package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
)

// BackMsg signals the parent to close the detail view.
type BackMsg struct{}

// ReplyMsg asks the parent to open compose answering Email.
type ReplyMsg struct {
	Email model.Email
}

// AutoDraftMsg asks the parent to open compose answering Email and
// generate a reply straight away.
type AutoDraftMsg struct {
	Email model.Email
}

// Model is the email detail view component.
type Model struct {
	email    *model.Email
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int

	// done holds completed action items keyed by "emailID/index". It
	// lives only as long as the view.
	done   map[string]bool
	cursor int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
		done:     make(map[string]bool),
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.email != nil {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Reply):
			e := *m.email
			return m, func() tea.Msg { return ReplyMsg{Email: e} }

		case key.Matches(msg, m.keys.AutoDraft):
			e := *m.email
			return m, func() tea.Msg { return AutoDraftMsg{Email: e} }

		case key.Matches(msg, m.keys.ToggleAction):
			m.ToggleAction(m.cursor)
			return m, nil

		case key.Matches(msg, m.keys.Down) && len(m.email.Actions) > 0:
			if m.cursor < len(m.email.Actions)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up) && len(m.email.Actions) > 0:
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (pgup/pgdn, mouse wheel)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetEmail shows e, resetting the action cursor and scroll position.
func (m *Model) SetEmail(e model.Email) {
	m.email = &e
	m.cursor = 0
	m.refresh()
	m.viewport.GotoTop()
}

// Clear drops the displayed email. Completed actions are kept.
func (m *Model) Clear() {
	m.email = nil
	m.cursor = 0
	m.viewport.SetContent("")
}

// EmailID returns the id of the displayed email, or "".
func (m Model) EmailID() string {
	if m.email == nil {
		return ""
	}
	return m.email.ID
}

// ToggleAction flips the completion mark of action i of the displayed email.
func (m *Model) ToggleAction(i int) {
	if m.email == nil || i < 0 || i >= len(m.email.Actions) {
		return
	}
	k := actionKey(m.email.ID, i)
	if m.done[k] {
		delete(m.done, k)
	} else {
		m.done[k] = true
	}
	m.refresh()
}

// Done reports whether action i of email id is marked complete.
func (m Model) Done(id string, i int) bool {
	return m.done[actionKey(id, i)]
}

func actionKey(id string, i int) string {
	return fmt.Sprintf("%s/%d", id, i)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// View renders the detail view.
func (m Model) View() string {
	if m.email == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No email selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.email == nil {
		return ""
	}

	e := m.email
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(e.Subject))
	sections = append(sections, theme.CategoryStyle(e.Category).Render(e.Category.Label()))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("From:"),
		valStyle.Render(e.Sender),
	))
	if !e.Time.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Date:"),
			valStyle.Render(e.Time.Format("2006-01-02 15:04")),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	if e.Summary != "" {
		sections = append(sections, "", separator, "")
		sections = append(sections, headerStyle.Render("Summary"))
		sections = append(sections, e.Summary)
	}

	sections = append(sections, "", separator, "")
	body := e.Body
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	}
	sections = append(sections, body)

	if len(e.Actions) > 0 {
		sections = append(sections, "", separator, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Actions (%d)", len(e.Actions)),
		))
		for i, a := range e.Actions {
			sections = append(sections, m.renderAction(i, a))
		}
	}

	if e.DraftReply != "" {
		sections = append(sections, "", separator, "")
		sections = append(sections, headerStyle.Render("Suggested reply"))
		sections = append(sections, e.DraftReply)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderAction(i int, a model.Action) string {
	box := "[ ]"
	if m.Done(m.email.ID, i) {
		box = "[x]"
	}
	line := box + " " + a.Task
	if a.Deadline != "" {
		line += theme.MutedStyle.Render("  due " + a.Deadline)
	}
	if m.Done(m.email.ID, i) {
		line = theme.DimmedStyle.Render(line)
	}
	if i == m.cursor {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.email != nil {
		m.refresh()
	}
}
