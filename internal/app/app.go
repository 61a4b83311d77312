// Package app is the composition root. It owns the inbox, the selection,
// and the list resolvers; views only emit messages and this model
// applies them.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/assistant"
	"github.com/nhle/mailmind/internal/cache"
	"github.com/nhle/mailmind/internal/compose"
	"github.com/nhle/mailmind/internal/credential"
	"github.com/nhle/mailmind/internal/inbox"
	"github.com/nhle/mailmind/internal/listview"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/refresh"
	"github.com/nhle/mailmind/internal/selection"
	"github.com/nhle/mailmind/internal/ui"
	assistantview "github.com/nhle/mailmind/internal/ui/assistant"
	"github.com/nhle/mailmind/internal/ui/command"
	"github.com/nhle/mailmind/internal/ui/composeform"
	"github.com/nhle/mailmind/internal/ui/detail"
	draftsview "github.com/nhle/mailmind/internal/ui/drafts"
	helpview "github.com/nhle/mailmind/internal/ui/help"
	"github.com/nhle/mailmind/internal/ui/maillist"
	"github.com/nhle/mailmind/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewCompose
	ViewDrafts
	ViewAssistant
	ViewSettings
	ViewHelp
	ViewCommand
)

// Options wires the root model to its collaborators. Cache and
// Credentials may be nil.
type Options struct {
	Config      *model.AppConfig
	ConfigPath  string
	Backend     Backend
	Cache       cache.Cache
	Credentials *credential.Store
	Logger      *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the shared mail state.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *KeyMap

	cfg     *model.AppConfig
	cfgPath string
	backend Backend
	cache   cache.Cache
	creds   *credential.Store
	log     *zap.Logger

	inbox     *inbox.Store
	selection *selection.Controller
	emails    *listview.Emails
	drafts    *listview.Drafts
	engine    *compose.Engine
	assistant *assistant.Controller
	poller    *refresh.Poller

	mailList      maillist.Model
	detail        detail.Model
	composeView   composeform.Model
	draftsView    draftsview.Model
	assistantView assistantview.Model
	settingsView  settings.Model
	helpView      helpview.Model
	commandView   command.Model

	notices ui.Notices
	health  string
	ready   bool
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	k := DefaultKeyMap()

	emails := listview.NewEmails(log)
	sel := &selection.Controller{}
	// Closing the detail pane consumes any search overlay.
	sel.OnChange(func(_, next string) {
		if next == "" {
			emails.ClearOverlay()
		}
	})

	drafts := listview.NewDrafts(log)
	engine := compose.NewEngine(opts.Backend, cfg.Compose.RevealInterval, log)
	ctrl := assistant.NewController(opts.Backend, log)

	return Model{
		currentView: ViewList,
		keys:        k,
		cfg:         cfg,
		cfgPath:     opts.ConfigPath,
		backend:     opts.Backend,
		cache:       opts.Cache,
		creds:       opts.Credentials,
		log:         log.Named("app"),

		inbox:     inbox.New(log),
		selection: sel,
		emails:    emails,
		drafts:    drafts,
		engine:    engine,
		assistant: ctrl,
		poller:    refresh.New(cfg.Refresh.Interval),

		mailList:      maillist.New(k, 80, 24),
		detail:        detail.New(k, 80, 24),
		composeView:   composeform.New(engine, opts.Backend, 80, 24),
		draftsView:    draftsview.New(drafts, k, 80, 24),
		assistantView: assistantview.New(ctrl, k, 80, 24),
		settingsView:  settings.New(opts.Backend, opts.Credentials, cfg.IMAP, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
	}
}

// Init checks the backend, restores the cached snapshot, issues the first
// inbox and drafts loads, and starts periodic refresh when configured.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkHealth(),
		m.inbox.Load(m.backend),
		m.drafts.Fetch(m.backend),
		m.poller.Start(),
	}
	if m.cache != nil {
		cmds = append(cmds, refresh.Restore(m.cache))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.mailList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.composeView.SetSize(contentWidth, contentHeight)
		m.draftsView.SetSize(contentWidth, contentHeight)
		m.assistantView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case healthMsg:
		if msg.err != nil {
			m.health = "offline"
			m.log.Warn("health check failed", zap.Error(msg.err))
			return m, nil
		}
		m.health = msg.status
		return m, nil

	case ui.NoticeMsg:
		if msg.Error {
			m.log.Warn("notice", zap.String("text", msg.Text))
		}
		return m, m.notices.Show(msg)

	case ui.NoticeExpiredMsg:
		m.notices.Expire(msg)
		return m, nil

	// --- Inbox, search, drafts ---

	case inbox.LoadedMsg:
		return m, m.handleInboxLoaded(msg)

	case listview.SearchedMsg:
		return m, m.handleSearched(msg)

	case listview.DraftsLoadedMsg:
		return m, m.handleDraftsLoaded(msg)

	case refresh.TickMsg:
		var cmd tea.Cmd
		if !m.inbox.Loading() {
			m.poller.MarkRunning()
			cmd = m.inbox.Load(m.backend)
		}
		return m, tea.Batch(cmd, m.poller.WaitForNext())

	case refresh.RestoredMsg:
		return m, m.handleRestored(msg)

	case refresh.SavedMsg:
		m.logCmdError("saving "+msg.Snapshot+" snapshot", msg.Err)
		return m, nil

	case uploadedMsg:
		if msg.err != nil {
			m.log.Error("upload failed", zap.String("source", msg.source), zap.Error(msg.err))
			return m, ui.Notify(uploadNotice(msg), true)
		}
		return m, tea.Batch(ui.Notify(uploadNotice(msg), false), m.reload())

	// --- Mail list ---

	case maillist.OpenMsg:
		return m, m.openEmail(msg.ID)

	case maillist.FilterChangedMsg:
		m.emails.SetFilter(msg.Term)
		return m, m.syncList()

	case maillist.SearchRequestMsg:
		cmd, err := m.emails.Search(m.backend, msg.Query)
		if errors.Is(err, listview.ErrEmptyQuery) {
			return m, ui.Notify("Enter a search query.", false)
		}
		return m, tea.Batch(cmd, m.syncList())

	case maillist.ClearOverlayMsg:
		m.emails.ClearOverlay()
		return m, m.syncList()

	case maillist.ToggleOrderMsg:
		m.emails.ToggleCategoryOrder()
		return m, m.syncList()

	// --- Detail ---

	case detail.BackMsg:
		return m, m.closeEmail()

	case detail.ReplyMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.composeView.StartReply(msg.Email)

	case detail.AutoDraftMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.composeView.StartAutoDraft(msg.Email)

	// --- Compose ---

	case compose.GeneratedMsg:
		cmd := m.engine.Update(msg)
		m.composeView.Sync()
		if msg.Epoch == m.engine.Epoch() && msg.Err != nil {
			return m, tea.Batch(cmd, ui.Notify("Failed to generate draft.", true))
		}
		return m, cmd

	case compose.RevealTickMsg:
		cmd := m.engine.Update(msg)
		m.composeView.Sync()
		return m, cmd

	case compose.SavedMsg:
		cmd := m.composeView.HandleSaved(msg)
		if msg.Err != nil {
			m.log.Error("saving draft failed", zap.Error(msg.Err))
			return m, cmd
		}
		return m, tea.Batch(
			cmd,
			ui.Notify("Draft saved", false),
			m.reload(),
			m.drafts.Fetch(m.backend),
		)

	case composeform.ClosedMsg, composeform.CancelMsg:
		m.currentView = m.previousView
		if m.currentView == ViewCompose {
			m.currentView = ViewList
		}
		return m, nil

	// --- Drafts ---

	case draftsview.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case draftsview.RefreshMsg:
		return m, m.drafts.Fetch(m.backend)

	// --- Assistant ---

	case assistantview.AskMsg:
		cmd, ok := m.assistant.Submit(msg.Text, m.selection.ID())
		if !ok {
			return m, nil
		}
		m.assistantView.Refresh()
		return m, cmd

	case assistant.ReplyMsg:
		if m.assistant.Update(msg) {
			m.assistantView.Refresh()
		}
		return m, nil

	// The conversation outlives the panel; a reply landing while it is
	// closed is shown on reopen.
	case assistantview.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	// --- Settings ---

	case settings.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case settings.IMAPSavedMsg:
		m.cfg.IMAP = msg.Config
		if m.cfgPath == "" {
			return m, ui.Notify("IMAP account saved", false)
		}
		if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
			m.log.Error("saving config failed", zap.Error(err))
			return m, ui.Notify(fmt.Sprintf("Failed to save config: %v", err), true)
		}
		return m, ui.Notify("IMAP account saved", false)

	// --- Command palette ---

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that switch views. It reports false when
// the key belongs to the active view.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}

	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.currentView = m.previousView
		}
		return nil, true

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.commandView.Reset()
			m.currentView = m.previousView
			return nil, true
		}
		return nil, false

	case ViewDetail:
		switch {
		case key.Matches(msg, m.keys.Assistant):
			return m.openAssistant(), true
		case key.Matches(msg, m.keys.Help):
			m.open(ViewHelp)
			return nil, true
		}
		return nil, false

	case ViewList:
		if m.mailList.Typing() {
			return nil, false
		}
	default:
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(), true

	case key.Matches(msg, m.keys.Help):
		m.open(ViewHelp)
		return nil, true

	case key.Matches(msg, m.keys.Command):
		m.open(ViewCommand)
		m.commandView.Reset()
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Assistant):
		return m.openAssistant(), true

	case key.Matches(msg, m.keys.Drafts):
		return m.openDrafts(), true

	case key.Matches(msg, m.keys.Settings):
		m.open(ViewSettings)
		return m.settingsView.Open(), true

	case key.Matches(msg, m.keys.Compose):
		m.open(ViewCompose)
		return m.composeView.StartNew(), true

	case key.Matches(msg, m.keys.Refresh):
		return m.reload(), true

	case key.Matches(msg, m.keys.Upload):
		m.open(ViewCommand)
		m.commandView.Prefill("upload ")
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Import):
		return m.startImport(), true
	}
	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewList:
		m.mailList, cmd = m.mailList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	case ViewDrafts:
		m.draftsView, cmd = m.draftsView.Update(msg)
	case ViewAssistant:
		m.assistantView, cmd = m.assistantView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}
	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerStatus())
	content := m.renderContent()

	var statusBar string
	if notice, ok := m.notices.Current(); ok {
		statusBar = m.layout.RenderNotice(notice.Text, notice.Error)
	} else {
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.mailList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewCompose:
		return m.composeView.View()
	case ViewDrafts:
		return m.draftsView.View()
	case ViewAssistant:
		return m.assistantView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// headerTitle shows the dashboard stats next to the app name.
func (m Model) headerTitle() string {
	return fmt.Sprintf("MailMind  %d emails | %d actions", m.inbox.Len(), m.inbox.ActionCount())
}

// headerStatus returns a short string describing backend and load state.
func (m Model) headerStatus() string {
	var parts []string
	switch {
	case m.inbox.Loading():
		parts = append(parts, "loading")
	case m.inbox.LastError() != nil:
		parts = append(parts, "load failed")
	case m.poller.Status().State == refresh.Failed:
		parts = append(parts, "refresh failed")
	}
	if m.emails.Searching() {
		parts = append(parts, "searching")
	}

	switch m.health {
	case "":
		parts = append(parts, "backend: ?")
	case "offline":
		parts = append(parts, "backend: offline")
	default:
		parts = append(parts, "backend: "+m.health)
	}
	return strings.Join(parts, " | ")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | R reply | g auto-draft | x toggle action | a assistant"
	case ViewCompose:
		return "tab next field | ctrl+g generate | ctrl+s save | esc cancel"
	case ViewDrafts:
		return "tab newest first | r refresh | esc back"
	case ViewAssistant:
		return "enter send | esc close | " + assistant.Mode(m.selection.ID())
	case ViewSettings:
		return "enter edit | s save | r reset | esc back"
	default:
		if m.emails.HasOverlay() {
			return "esc clear search | enter open | s new search"
		}
		if m.emails.Filter() != "" {
			return "esc clear filter | / edit filter | enter open"
		}
		return "q quit | ? help | / filter | s AI search | tab order | c compose | a assistant | d drafts"
	}
}

// open switches to view v, remembering the current view.
func (m *Model) open(v ViewState) {
	if m.currentView != v {
		m.previousView = m.currentView
	}
	m.currentView = v
}

func (m *Model) openAssistant() tea.Cmd {
	m.assistantView.SetMode(assistant.Mode(m.selection.ID()))
	m.assistantView.Refresh()
	m.open(ViewAssistant)
	return m.assistantView.Focus()
}

func (m *Model) openDrafts() tea.Cmd {
	m.open(ViewDrafts)
	return tea.Batch(m.draftsView.Refresh(), m.drafts.Fetch(m.backend))
}

func (m *Model) startImport() tea.Cmd {
	cmd, err := m.importIMAP()
	if err != nil {
		if errors.Is(err, errIMAPNotConfigured) {
			m.open(ViewSettings)
			return tea.Batch(
				m.settingsView.Open(),
				ui.Notify("Configure the IMAP account first.", false),
			)
		}
		return ui.Notify(fmt.Sprintf("Import failed: %v", err), true)
	}
	return tea.Batch(cmd, ui.Notify("Importing from IMAP...", false))
}

func (m *Model) quit() tea.Cmd {
	m.poller.Stop()
	m.assistant.Reset()
	return tea.Quit
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(line string) tea.Cmd {
	name, arg := command.Parse(line)
	switch name {
	case "refresh", "sync":
		return m.reload()
	case "quit", "q":
		return m.quit()
	case "compose", "new":
		m.open(ViewCompose)
		return m.composeView.StartNew()
	case "drafts":
		return m.openDrafts()
	case "settings", "prompts":
		m.open(ViewSettings)
		return m.settingsView.Open()
	case "upload":
		if arg == "" {
			return ui.Notify("usage: upload <path>", true)
		}
		return tea.Batch(m.upload(arg), ui.Notify("Uploading "+arg+"...", false))
	case "import":
		return m.startImport()
	case "clear":
		m.emails.ClearOverlay()
		m.emails.SetFilter("")
		return m.syncList()
	default:
		return ui.Notify(fmt.Sprintf("unknown command %q", name), true)
	}
}
