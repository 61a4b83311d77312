// Package cache keeps a local snapshot of the last committed inbox and
// drafts so the UI has something to show before the first load returns.
// The backend stays the source of truth; the snapshot is replaced
// wholesale on every successful load.
package cache

import (
	"context"
	"time"

	"github.com/nhle/mailmind/internal/model"
)

// Cache defines the snapshot persistence interface.
type Cache interface {
	// SaveEmails replaces the email snapshot, preserving order.
	SaveEmails(ctx context.Context, emails []model.Email) error
	// LoadEmails returns the email snapshot in saved order.
	LoadEmails(ctx context.Context) ([]model.Email, error)

	SaveDrafts(ctx context.Context, drafts []model.Draft) error
	LoadDrafts(ctx context.Context) ([]model.Draft, error)

	// SyncedAt returns when the named snapshot was last saved, or the zero
	// time if never.
	SyncedAt(ctx context.Context, name string) (time.Time, error)

	Close() error
}

// Snapshot names recorded in sync_meta.
const (
	SnapshotEmails = "emails"
	SnapshotDrafts = "drafts"
)
