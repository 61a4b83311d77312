// Package composeform is the compose screen. The draft body belongs to
// compose.Engine: the textarea mirrors it while a generation is revealing
// and writes manual edits back once the engine is idle.
package composeform

import (
	"errors"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/compose"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/theme"
	"github.com/nhle/mailmind/internal/ui"
)

// CancelMsg signals the parent to close compose without saving.
type CancelMsg struct{}

// ClosedMsg signals the parent that a draft was saved and compose closed.
type ClosedMsg struct{}

const (
	fieldRecipient = iota
	fieldSubject
	fieldInstruction
	fieldBody
	fieldCount
)

// Model is the compose view.
type Model struct {
	engine *compose.Engine
	saver  compose.Saver
	form   compose.Form

	recipient   textinput.Model
	subject     textinput.Model
	instruction textinput.Model
	body        textarea.Model
	focus       int

	width  int
	height int
}

// New creates a compose view generating with engine and saving via saver.
func New(engine *compose.Engine, saver compose.Saver, width, height int) Model {
	recipient := textinput.New()
	recipient.Prompt = "To:       "
	recipient.Placeholder = "recipient@example.com"

	subject := textinput.New()
	subject.Prompt = "Subject:  "

	instruction := textinput.New()
	instruction.Prompt = "Ask AI:   "
	instruction.Placeholder = "e.g. politely decline, propose Tuesday"

	body := textarea.New()
	body.Placeholder = "Write your message or press ctrl+g to generate one..."
	body.ShowLineNumbers = false
	body.CharLimit = 0

	m := Model{
		engine:      engine,
		saver:       saver,
		recipient:   recipient,
		subject:     subject,
		instruction: instruction,
		body:        body,
	}
	m.SetSize(width, height)
	return m
}

// StartNew opens an empty form for a new email.
func (m *Model) StartNew() tea.Cmd {
	return m.start(compose.Form{})
}

// StartReply opens a form answering e.
func (m *Model) StartReply(e model.Email) tea.Cmd {
	return m.start(compose.NewReply(e))
}

// StartAutoDraft opens a form answering e and starts generating a
// professional reply right away.
func (m *Model) StartAutoDraft(e model.Email) tea.Cmd {
	f := compose.NewReply(e)
	f.Instruction = compose.AutoDraftInstruction
	focus := m.start(f)
	return tea.Batch(focus, m.generate())
}

func (m *Model) start(f compose.Form) tea.Cmd {
	m.engine.Reset()
	m.form = f
	m.recipient.SetValue(f.Recipient)
	m.subject.SetValue(f.Subject)
	m.instruction.SetValue(f.Instruction)
	m.body.Reset()

	first := fieldRecipient
	if f.Recipient != "" {
		first = fieldInstruction
	}
	return m.setFocus(first)
}

// Form returns the form as last synchronized from the inputs.
func (m Model) Form() compose.Form { return m.form }

// Body returns the text shown in the body field.
func (m Model) Body() string { return m.body.Value() }

// Init returns the initial command for the compose view.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key input for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(msg)
	}

	switch keyMsg.String() {
	case "esc":
		m.engine.Reset()
		m.body.Reset()
		return m, func() tea.Msg { return CancelMsg{} }

	case "tab":
		return m, m.setFocus((m.focus + 1) % fieldCount)

	case "shift+tab":
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)

	case "ctrl+g":
		return m, m.generate()

	case "ctrl+s":
		return m, m.save()

	case "enter":
		if m.focus == fieldInstruction {
			return m, m.generate()
		}
		if m.focus != fieldBody {
			return m, m.setFocus(m.focus + 1)
		}
	}

	if m.focus == fieldBody && m.engine.Generating() {
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldRecipient:
		m.recipient, cmd = m.recipient.Update(msg)
	case fieldSubject:
		m.subject, cmd = m.subject.Update(msg)
	case fieldInstruction:
		m.instruction, cmd = m.instruction.Update(msg)
	case fieldBody:
		m.body, cmd = m.body.Update(msg)
		m.engine.SetBody(m.body.Value())
	}
	m.syncForm()
	return m, cmd
}

// Sync copies the engine body into the body field. The parent calls it
// after routing generation messages to the engine.
func (m *Model) Sync() {
	if m.body.Value() != m.engine.Body() {
		m.body.SetValue(m.engine.Body())
	}
}

// HandleSaved finishes a save started from this view. On failure the
// form stays open.
func (m *Model) HandleSaved(msg compose.SavedMsg) tea.Cmd {
	m.form.Saved()
	if msg.Err != nil {
		return ui.Notify("Failed to save draft: "+msg.Err.Error(), true)
	}
	m.engine.Reset()
	m.body.Reset()
	return func() tea.Msg { return ClosedMsg{} }
}

func (m *Model) generate() tea.Cmd {
	m.syncForm()
	cmd, err := m.engine.Generate(m.form.Target(), m.form.Instruction)
	if errors.Is(err, compose.ErrEmptyInstruction) {
		return tea.Batch(m.setFocus(fieldInstruction), ui.Notify("Enter an instruction for the AI first.", false))
	}
	m.body.Reset()
	return cmd
}

func (m *Model) save() tea.Cmd {
	if m.form.Saving() {
		return nil
	}
	if m.engine.Generating() {
		return ui.Notify("Wait for the draft to finish generating.", false)
	}
	m.syncForm()
	cmd, err := m.form.Save(m.saver, m.body.Value())
	if err != nil {
		return ui.Notify("Recipient, subject and body are required.", true)
	}
	return cmd
}

func (m *Model) syncForm() {
	m.form.Recipient = m.recipient.Value()
	m.form.Subject = m.subject.Value()
	m.form.Instruction = m.instruction.Value()
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	m.recipient.Blur()
	m.subject.Blur()
	m.instruction.Blur()
	m.body.Blur()

	switch field {
	case fieldRecipient:
		return m.recipient.Focus()
	case fieldSubject:
		return m.subject.Focus()
	case fieldInstruction:
		return m.instruction.Focus()
	default:
		return m.body.Focus()
	}
}

// View renders the compose view.
func (m Model) View() string {
	title := "New email"
	if m.form.ReplyTo != "" {
		title = "Reply"
	}
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	status := theme.HelpStyle.Render("tab next field • ctrl+g generate • ctrl+s save • esc cancel")
	switch {
	case m.engine.Generating() && m.engine.Pending() > 0:
		status = theme.OverlayBannerStyle.Render("Writing draft...")
	case m.engine.Generating():
		status = theme.OverlayBannerStyle.Render("Generating draft...")
	case m.form.Saving():
		status = theme.OverlayBannerStyle.Render("Saving draft...")
	case m.engine.Err() != nil:
		status = lipgloss.NewStyle().Foreground(theme.ColorRed).
			Render("Draft generation failed. Edit the instruction and try again.")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		m.recipient.View(),
		m.subject.View(),
		m.instruction.View(),
		"",
		m.body.View(),
		"",
		status,
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the compose view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	inner := width - 10
	if inner < 10 {
		inner = 10
	}
	m.recipient.Width = inner - 10
	m.subject.Width = inner - 10
	m.instruction.Width = inner - 10

	bodyHeight := height - 14
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.body.SetWidth(inner)
	m.body.SetHeight(bodyHeight)
}
