package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Entry describes a palette command for help and completion.
type Entry struct {
	Name        string
	Usage       string
	Description string
}

// Commands lists every command the palette understands.
var Commands = []Entry{
	{Name: "refresh", Usage: "refresh", Description: "reload the inbox"},
	{Name: "compose", Usage: "compose", Description: "write a new email"},
	{Name: "drafts", Usage: "drafts", Description: "show saved drafts"},
	{Name: "upload", Usage: "upload <path>", Description: "upload a .json or .eml file"},
	{Name: "import", Usage: "import", Description: "import recent mail over IMAP"},
	{Name: "settings", Usage: "settings", Description: "edit the assistant prompts"},
	{Name: "clear", Usage: "clear", Description: "close search results and the filter"},
	{Name: "quit", Usage: "quit", Description: "exit"},
}

// Parse splits a command line into its name and the remaining argument.
func Parse(line string) (name, arg string) {
	line = strings.TrimSpace(line)
	name, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// Complete returns the first command name starting with prefix, or "".
func Complete(prefix string) string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return ""
	}
	for _, c := range Commands {
		if strings.HasPrefix(c.Name, prefix) {
			return c.Name
		}
	}
	return ""
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil

		case "tab":
			if !strings.Contains(m.input.Value(), " ") {
				if name := Complete(m.input.Value()); name != "" {
					m.input.SetValue(name + " ")
					m.input.CursorEnd()
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Prefill replaces the input with text, cursor at the end.
func (m *Model) Prefill(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}

// Reset clears the input.
func (m *Model) Reset() {
	m.input.Reset()
}
