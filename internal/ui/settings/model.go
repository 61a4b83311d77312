// Package settings edits the backend system prompts and the IMAP account
// used by the import command.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/credential"
	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
	"github.com/nhle/mailmind/internal/ui"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeList       Mode = iota // Prompt list
	ModeLoading                // Fetching prompts
	ModeEditPrompt             // Editing one prompt
	ModeSaving                 // Sending prompts
	ModeIMAP                   // IMAP account form
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// IMAPSavedMsg reports an IMAP account whose password is now in the
// keyring. The parent persists the rest to the config file.
type IMAPSavedMsg struct {
	Config model.IMAPConfig
}

// PromptClient reads and writes the backend system prompts.
type PromptClient interface {
	GetPrompts(ctx context.Context) (model.Prompts, error)
	UpdatePrompts(ctx context.Context, prompts model.Prompts) error
}

type promptsLoadedMsg struct {
	prompts model.Prompts
	err     error
}

type promptsSavedMsg struct {
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	promptText string

	imapHost     string
	imapPort     string
	imapUsername string
	imapPassword string
	imapTLS      bool
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode    Mode
	client  PromptClient
	creds   *credential.Store
	imap    model.IMAPConfig
	prompts model.Prompts
	names   []string
	dirty   bool

	selectedIdx int
	editing     string
	form        *huh.Form
	fb          *formBindings
	spinner     spinner.Model
	statusMsg   string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view. creds may be nil when no keyring is
// available, in which case the IMAP form reports an error on save.
func New(client PromptClient, creds *credential.Store, imap model.IMAPConfig, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeList,
		client:  client,
		creds:   creds,
		imap:    imap,
		prompts: model.Prompts{},
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init loads the prompts from the backend.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open starts a fresh session, discarding unsaved edits.
func (m *Model) Open() tea.Cmd {
	m.statusMsg = ""
	return m.load()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case promptsLoadedMsg:
		m.mode = ModeList
		if msg.err != nil {
			m.statusMsg = "Failed to load prompts"
			return m, ui.Notify(fmt.Sprintf("Failed to load prompts: %v", msg.err), true)
		}
		m.setPrompts(msg.prompts)
		return m, nil

	case promptsSavedMsg:
		m.mode = ModeList
		if msg.err != nil {
			m.statusMsg = "Failed to save prompts"
			return m, ui.Notify(fmt.Sprintf("Failed to save prompts: %v", msg.err), true)
		}
		m.dirty = false
		m.statusMsg = "Prompts saved"
		return m, ui.Notify("Prompts saved successfully!", false)

	case spinner.TickMsg:
		if m.mode == ModeLoading || m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeList {
			return m.handleListKeys(msg)
		}
	}

	switch m.mode {
	case ModeEditPrompt:
		return m.updatePromptForm(msg)
	case ModeIMAP:
		return m.updateIMAPForm(msg)
	}
	return m, nil
}

// rows is the number of selectable rows: one per prompt plus the IMAP
// account.
func (m Model) rows() int {
	return len(m.names) + 1
}

// handleListKeys processes key events in the prompt list mode.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % m.rows()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx--
		if m.selectedIdx < 0 {
			m.selectedIdx = m.rows() - 1
		}
		return m, nil

	case msg.String() == "enter":
		if m.selectedIdx == len(m.names) {
			return m, m.startIMAPForm()
		}
		return m, m.startPromptForm(m.names[m.selectedIdx])

	case msg.String() == "s":
		return m, m.save()

	case msg.String() == "r":
		m.statusMsg = ""
		return m, m.load()
	}

	return m, nil
}

// --- Prompt form ---

func (m *Model) startPromptForm(name string) tea.Cmd {
	m.editing = name
	m.fb.promptText = m.prompts[name]
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(name).
				Description("System prompt sent to the model").
				CharLimit(0).
				Lines(12).
				Value(&m.fb.promptText),
		),
	).WithWidth(m.formWidth())
	m.mode = ModeEditPrompt
	return m.form.Init()
}

func (m Model) updatePromptForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.prompts[m.editing] != m.fb.promptText {
			m.prompts[m.editing] = m.fb.promptText
			m.dirty = true
		}
		m.mode = ModeList
		return m, nil
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// --- IMAP form ---

func (m *Model) startIMAPForm() tea.Cmd {
	m.fb.imapHost = m.imap.Host
	m.fb.imapPort = m.imap.Port
	m.fb.imapUsername = m.imap.Username
	m.fb.imapPassword = "" // Never pre-fill credentials
	m.fb.imapTLS = m.imap.TLS

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Description("IMAP server hostname").
				Placeholder("imap.example.com").
				Value(&m.fb.imapHost).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Description("IMAP server port (e.g., 993)").
				Placeholder("993").
				Value(&m.fb.imapPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Description("Email account username").
				Placeholder("user@example.com").
				Value(&m.fb.imapUsername).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Email account password or app password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.imapPassword).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("Use TLS").
				Description("Enable TLS encryption for connections").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.imapTLS),
		),
	).WithWidth(m.formWidth())
	m.mode = ModeIMAP
	return m.form.Init()
}

func (m Model) updateIMAPForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = ModeList
		return m, m.saveIMAP()
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

func (m *Model) saveIMAP() tea.Cmd {
	cfg := m.imap
	cfg.Host = strings.TrimSpace(m.fb.imapHost)
	cfg.Port = strings.TrimSpace(m.fb.imapPort)
	cfg.Username = strings.TrimSpace(m.fb.imapUsername)
	cfg.TLS = m.fb.imapTLS

	if m.creds == nil {
		m.statusMsg = "No keyring available"
		return ui.Notify("No keyring available to store the IMAP password", true)
	}
	if err := m.creds.Set(credential.IMAPPasswordKey(cfg.Username), m.fb.imapPassword); err != nil {
		m.statusMsg = "Error saving credential"
		return ui.Notify(fmt.Sprintf("Error saving credential: %v", err), true)
	}
	m.fb.imapPassword = ""
	m.imap = cfg
	m.statusMsg = "IMAP account saved"
	return func() tea.Msg { return IMAPSavedMsg{Config: cfg} }
}

// --- Commands ---

func (m *Model) load() tea.Cmd {
	m.mode = ModeLoading
	client := m.client
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		prompts, err := client.GetPrompts(context.Background())
		return promptsLoadedMsg{prompts: prompts, err: err}
	})
}

func (m *Model) save() tea.Cmd {
	m.mode = ModeSaving
	client := m.client
	prompts := m.prompts.Clone()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return promptsSavedMsg{err: client.UpdatePrompts(context.Background(), prompts)}
	})
}

func (m *Model) setPrompts(p model.Prompts) {
	m.prompts = p.Clone()
	m.names = m.names[:0]
	for name := range m.prompts {
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)
	m.dirty = false
	if m.selectedIdx >= m.rows() {
		m.selectedIdx = 0
	}
}

// Prompts returns a copy of the prompts being edited.
func (m Model) Prompts() model.Prompts { return m.prompts.Clone() }

// Dirty reports whether there are unsaved prompt edits.
func (m Model) Dirty() bool { return m.dirty }

func (m Model) Mode() Mode { return m.mode }

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeLoading:
		return m.viewBusy("Loading prompts...")
	case ModeSaving:
		return m.viewBusy("Saving prompts...")
	case ModeEditPrompt, ModeIMAP:
		return m.viewForm()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render("System prompts"))
	b.WriteString("\n")

	if len(m.names) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true)
		b.WriteString(emptyStyle.Render("No prompts loaded. Press 'r' to reload."))
		b.WriteString("\n")
	}
	for i, name := range m.names {
		preview := ui.Truncate(strings.ReplaceAll(m.prompts[name], "\n", " "), m.width-len(name)-12)
		line := fmt.Sprintf("%s  %s", name, theme.MutedStyle.Render(preview))
		b.WriteString(m.renderRow(i, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render("Import"))
	b.WriteString("\n")
	account := "IMAP account: not configured"
	if m.imap.Host != "" {
		account = fmt.Sprintf("IMAP account: %s@%s:%s", m.imap.Username, m.imap.Host, m.imap.Port)
	}
	b.WriteString(m.renderRow(len(m.names), account))
	b.WriteString("\n")

	if m.dirty {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("Unsaved changes"))
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	b.WriteString(hintStyle.Render(
		"enter edit | s save | r reset | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderRow(idx int, line string) string {
	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(m.form.View())
}

func (m Model) viewBusy(text string) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(fmt.Sprintf("%s %s", m.spinner.View(), text))
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
