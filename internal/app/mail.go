package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/inbox"
	"github.com/nhle/mailmind/internal/listview"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/refresh"
	"github.com/nhle/mailmind/internal/ui"
	"github.com/nhle/mailmind/internal/ui/maillist"
)

// syncList pushes the resolved email list into the list view.
func (m *Model) syncList() tea.Cmd {
	return m.mailList.SetEmails(m.emails.Resolve(), maillist.State{
		Overlay:    m.emails.HasOverlay(),
		Searching:  m.emails.Searching(),
		ByCategory: m.emails.CategoryOrder(),
		Filter:     m.emails.Filter(),
	})
}

// reload issues a fresh inbox load unless one is already running.
func (m *Model) reload() tea.Cmd {
	if m.inbox.Loading() {
		return nil
	}
	return m.inbox.Load(m.backend)
}

func (m *Model) handleInboxLoaded(msg inbox.LoadedMsg) tea.Cmd {
	if !m.inbox.Apply(msg) {
		return nil
	}
	m.poller.MarkDone(msg.Err)
	if msg.Err != nil {
		return ui.Notify(fmt.Sprintf("Failed to load emails: %v", msg.Err), true)
	}

	emails := m.inbox.Emails()
	m.emails.SetBase(emails)
	cmds := []tea.Cmd{m.syncList()}

	// Keep the open email in step with the reloaded copy.
	if id := m.detail.EmailID(); id != "" {
		if e, ok := m.inbox.Find(id); ok {
			m.detail.SetEmail(e)
		}
	}
	if m.cache != nil {
		cmds = append(cmds, refresh.SaveEmails(m.cache, m.inbox.Emails()))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleSearched(msg listview.SearchedMsg) tea.Cmd {
	if !m.emails.Apply(msg) {
		return nil
	}
	cmd := m.syncList()
	if msg.Err != nil {
		return tea.Batch(cmd, ui.Notify(fmt.Sprintf("AI search failed: %v", msg.Err), true))
	}
	if len(msg.Raw) == 0 {
		return tea.Batch(cmd, ui.Notify(fmt.Sprintf("No results for %q", msg.Query), false))
	}
	return cmd
}

func (m *Model) handleDraftsLoaded(msg listview.DraftsLoadedMsg) tea.Cmd {
	if !m.drafts.Apply(msg) {
		return nil
	}
	cmds := []tea.Cmd{m.draftsView.Refresh()}
	if msg.Err != nil {
		m.log.Error("fetching drafts failed", zap.Error(msg.Err))
		if m.currentView == ViewDrafts {
			cmds = append(cmds, ui.Notify("Failed to load drafts.", true))
		}
		return tea.Batch(cmds...)
	}
	if m.cache != nil {
		cmds = append(cmds, refresh.SaveDrafts(m.cache, m.drafts.Items()))
	}
	return tea.Batch(cmds...)
}

// handleRestored seeds the lists from the cache while the first live load
// is still pending or has failed. Live data always wins.
func (m *Model) handleRestored(msg refresh.RestoredMsg) tea.Cmd {
	if msg.Err != nil {
		m.log.Warn("restoring snapshot failed", zap.Error(msg.Err))
		return nil
	}
	var cmds []tea.Cmd
	if m.inbox.Loading() || m.inbox.LastError() != nil {
		if m.inbox.Seed(msg.Emails) {
			m.emails.SetBase(m.inbox.Emails())
			cmds = append(cmds, m.syncList())
			m.log.Info("restored cached inbox",
				zap.Int("count", len(msg.Emails)),
				zap.Time("synced_at", msg.SyncedAt),
			)
		}
	}
	if m.drafts.Len() == 0 && (m.drafts.Loading() || m.drafts.LastError() != nil) && len(msg.Drafts) > 0 {
		m.drafts.Load(msg.Drafts)
		cmds = append(cmds, m.draftsView.Refresh())
	}
	return tea.Batch(cmds...)
}

// openEmail shows the email with id. Search results may not be in the
// inbox, so the lookup runs against the list as resolved.
func (m *Model) openEmail(id string) tea.Cmd {
	e, ok := findEmail(m.emails.Resolve(), id)
	if !ok {
		if e, ok = m.inbox.Find(id); !ok {
			return nil
		}
	}
	m.emails.Select(id)
	m.selection.Select(id)
	m.detail.SetEmail(e)
	m.open(ViewDetail)
	return m.syncList()
}

// closeEmail clears the selection and returns to the list.
func (m *Model) closeEmail() tea.Cmd {
	m.selection.Clear()
	m.detail.Clear()
	m.currentView = ViewList
	return m.syncList()
}

func findEmail(emails []model.Email, id string) (model.Email, bool) {
	for _, e := range emails {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}
