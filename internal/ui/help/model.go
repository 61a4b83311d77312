// Package help renders the keyboard reference and the command palette
// listing.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/theme"
	"github.com/nhle/mailmind/internal/ui/command"
)

// section is a titled group of bindings.
type section struct {
	title    string
	bindings []key.Binding
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShortSeparator = "   "
	return Model{keys: k, help: h, width: width, height: height}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the root closes the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) sections() []section {
	k := m.keys
	return []section{
		{"Inbox", []key.Binding{k.Up, k.Down, k.Select, k.Filter, k.Search, k.CycleSort, k.Refresh}},
		{"Email", []key.Binding{k.Back, k.Reply, k.AutoDraft, k.ToggleAction}},
		{"Views", []key.Binding{k.Assistant, k.Drafts, k.Settings, k.Command, k.Help, k.Quit}},
		{"Mail in and out", []key.Binding{k.Compose, k.Upload, k.Import}},
	}
}

// View renders the help overlay.
func (m Model) View() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	m.help.Width = m.width - 4
	blocks := []string{heading.MarginBottom(1).Render("Keyboard Shortcuts")}
	for _, s := range m.sections() {
		blocks = append(blocks,
			heading.Foreground(theme.ColorBlue).Render(s.title),
			m.help.ShortHelpView(s.bindings),
			"",
		)
	}
	blocks = append(blocks, heading.Foreground(theme.ColorBlue).Render("Commands"), commandList())

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func commandList() string {
	lines := make([]string, 0, len(command.Commands))
	for _, c := range command.Commands {
		lines = append(lines, fmt.Sprintf(":%-22s %s", c.Usage, theme.MutedStyle.Render(c.Description)))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
