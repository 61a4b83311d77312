// Package assistant is the chat panel over assistant.Controller. The
// parent submits questions so the selection at submit time is captured
// in one place.
package assistant

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/assistant"
	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
)

// CloseMsg signals the parent to close the assistant panel.
type CloseMsg struct{}

// AskMsg asks the parent to submit Text to the controller.
type AskMsg struct {
	Text string
}

// Model is the assistant panel Bubble Tea model.
type Model struct {
	ctrl     *assistant.Controller
	input    textarea.Model
	viewport viewport.Model
	mode     string
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new assistant panel model reading from ctrl.
func New(ctrl *assistant.Controller, k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your emails..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vpHeight := height - 8 // space for input area + borders
	if vpHeight < 4 {
		vpHeight = 4
	}

	vp := viewport.New(width-4, vpHeight)
	vp.Style = lipgloss.NewStyle()

	m := Model{
		ctrl:     ctrl,
		input:    ta,
		viewport: vp,
		mode:     assistant.ModeGlobal,
		keys:     k,
		width:    width,
		height:   height,
	}
	m.Refresh()
	return m
}

// Init returns the initial command for the assistant panel.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the assistant panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	if taCmd != nil {
		cmds = append(cmds, taCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	if vpCmd != nil {
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input for the assistant panel.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg {
			return CloseMsg{}
		}

	case "enter":
		if m.ctrl.Awaiting() {
			return m, nil
		}
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg {
			return AskMsg{Text: text}
		}

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// SetMode sets the routing label shown in the title.
func (m *Model) SetMode(mode string) {
	m.mode = mode
}

// Refresh re-renders the transcript and scrolls to the bottom.
func (m *Model) Refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation builds the conversation display string.
func (m Model) renderConversation() string {
	messages := m.ctrl.Messages()
	if len(messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Ask about the selected email, or about your whole " +
				"mailbox when no email is open.")
	}

	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	var sections []string
	for _, msg := range messages {
		label := theme.AssistantMessageStyle.Render("Assistant:")
		if msg.Role == model.RoleUser {
			label = theme.UserMessageStyle.Render("You:")
		}
		sections = append(sections, label)
		sections = append(sections, contentStyle.Render(msg.Content))
		sections = append(sections, "")
	}

	if m.ctrl.Awaiting() {
		sections = append(sections, theme.HelpStyle.Render("Thinking..."))
	}

	return strings.Join(sections, "\n")
}

// View renders the assistant panel.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("AI Assistant") + "  " + theme.MutedStyle.Render(m.mode)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(
		strings.Repeat("─", max(min(m.width-6, 80), 0)),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		m.input.View(),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the assistant panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)

	vpHeight := height - 8
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = width - 4
	m.viewport.Height = vpHeight
	m.Refresh()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
