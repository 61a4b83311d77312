package listview

import (
	"context"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// DraftFetcher fetches saved drafts from the backend.
type DraftFetcher interface {
	FetchDrafts(ctx context.Context) ([]identity.RawDraft, error)
}

// DraftsLoadedMsg carries the result of a drafts fetch.
type DraftsLoadedMsg struct {
	Token uint64
	Raw   []identity.RawDraft
	Err   error
}

// Drafts is the drafts list. The load-time order is snapshotted so that
// turning recency ordering off restores it exactly.
type Drafts struct {
	snapshot  []model.Draft
	byRecency bool
	token     uint64
	loading   bool
	lastErr   error
	log       *zap.Logger
}

// NewDrafts creates an empty drafts list.
func NewDrafts(log *zap.Logger) *Drafts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Drafts{log: log.Named("drafts")}
}

// Fetch returns a command loading drafts with f.
func (d *Drafts) Fetch(f DraftFetcher) tea.Cmd {
	d.token++
	d.loading = true
	token := d.token
	return func() tea.Msg {
		raw, err := f.FetchDrafts(context.Background())
		return DraftsLoadedMsg{Token: token, Raw: raw, Err: err}
	}
}

// Apply installs a fetch result. Stale results are ignored; a failure
// keeps the current list.
func (d *Drafts) Apply(msg DraftsLoadedMsg) bool {
	if msg.Token != d.token {
		return false
	}
	d.loading = false
	if msg.Err != nil {
		d.lastErr = msg.Err
		return true
	}
	drafts, dropped := identity.NormalizeDrafts(msg.Raw)
	if dropped > 0 && d.log != nil {
		d.log.Warn("dropped drafts without identity", zap.Int("count", dropped))
	}
	d.Load(drafts)
	return true
}

// Load replaces the list and snapshots its order.
func (d *Drafts) Load(drafts []model.Draft) {
	d.snapshot = append([]model.Draft(nil), drafts...)
	d.lastErr = nil
}

// ToggleRecency flips recency ordering and returns the new state.
func (d *Drafts) ToggleRecency() bool {
	d.byRecency = !d.byRecency
	return d.byRecency
}

func (d *Drafts) Recency() bool { return d.byRecency }
func (d *Drafts) Loading() bool { return d.loading }
func (d *Drafts) LastError() error { return d.lastErr }
func (d *Drafts) Len() int { return len(d.snapshot) }

// Items returns the drafts in display order: newest first when recency
// ordering is on (missing timestamps count as the epoch), otherwise the
// load-time order.
func (d *Drafts) Items() []model.Draft {
	out := append([]model.Draft(nil), d.snapshot...)
	if d.byRecency {
		sort.SliceStable(out, func(i, j int) bool {
			return unix(out[i]) > unix(out[j])
		})
	}
	return out
}

func unix(d model.Draft) int64 {
	if d.Time.IsZero() {
		return 0
	}
	return d.Time.UnixNano()
}
