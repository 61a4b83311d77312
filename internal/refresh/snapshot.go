package refresh

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailmind/internal/cache"
	"github.com/nhle/mailmind/internal/model"
)

// snapshotTimeout bounds a single cache read or write.
const snapshotTimeout = 5 * time.Second

// RestoredMsg carries the snapshot read at startup.
type RestoredMsg struct {
	Emails   []model.Email
	Drafts   []model.Draft
	SyncedAt time.Time
	Err      error
}

// SavedMsg reports the outcome of a snapshot write.
type SavedMsg struct {
	Snapshot string
	Err      error
}

// Restore returns a command reading the cached lists.
func Restore(c cache.Cache) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		emails, err := c.LoadEmails(ctx)
		if err != nil {
			return RestoredMsg{Err: err}
		}
		drafts, err := c.LoadDrafts(ctx)
		if err != nil {
			return RestoredMsg{Err: err}
		}
		at, err := c.SyncedAt(ctx, cache.SnapshotEmails)
		return RestoredMsg{Emails: emails, Drafts: drafts, SyncedAt: at, Err: err}
	}
}

// SaveEmails returns a command replacing the cached inbox with emails.
// emails must be a copy the caller no longer mutates.
func SaveEmails(c cache.Cache, emails []model.Email) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		return SavedMsg{Snapshot: cache.SnapshotEmails, Err: c.SaveEmails(ctx, emails)}
	}
}

// SaveDrafts returns a command replacing the cached drafts.
func SaveDrafts(c cache.Cache, drafts []model.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		return SavedMsg{Snapshot: cache.SnapshotDrafts, Err: c.SaveDrafts(ctx, drafts)}
	}
}
