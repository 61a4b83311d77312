// Package inbox holds the canonical, newest-first list of emails fetched
// from the backend. Every load is tagged with a token; only the response
// to the most recently issued load may replace the list.
package inbox

import (
	"context"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// LoadToken identifies one issued load. Tokens increase monotonically.
type LoadToken uint64

// Lister fetches the full email list from the backend.
type Lister interface {
	ListEmails(ctx context.Context) ([]identity.RawEmail, error)
}

// LoadedMsg carries the result of a load issued with Token.
type LoadedMsg struct {
	Token LoadToken
	Raw   []identity.RawEmail
	Err   error
}

// Store owns the email list. It is mutated only from the Bubble Tea update
// loop; readers get copies.
type Store struct {
	emails  []model.Email
	token   LoadToken
	loading bool
	lastErr error
	log     *zap.Logger
}

// New creates an empty store.
func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log.Named("inbox")}
}

// BeginLoad issues a new load token and marks the store as loading. Any
// response tagged with an earlier token is stale from now on.
func (s *Store) BeginLoad() LoadToken {
	s.token++
	s.loading = true
	return s.token
}

// Load issues a new token and returns a command fetching the list with l.
func (s *Store) Load(l Lister) tea.Cmd {
	token := s.BeginLoad()
	return func() tea.Msg {
		raw, err := l.ListEmails(context.Background())
		return LoadedMsg{Token: token, Raw: raw, Err: err}
	}
}

// Apply routes a LoadedMsg to Commit or Fail.
func (s *Store) Apply(msg LoadedMsg) bool {
	if msg.Err != nil {
		return s.Fail(msg.Token, msg.Err)
	}
	return s.Commit(msg.Token, msg.Raw)
}

// Commit normalizes raw, sorts it newest first, and replaces the list in
// one step. It reports false, changing nothing, when token is stale.
func (s *Store) Commit(token LoadToken, raw []identity.RawEmail) bool {
	if token != s.token {
		s.log.Debug("discarding stale load",
			zap.Uint64("token", uint64(token)),
			zap.Uint64("current", uint64(s.token)),
		)
		return false
	}

	emails, dropped := identity.NormalizeAll(raw)
	if dropped > 0 {
		s.log.Warn("dropped emails without identity", zap.Int("count", dropped))
	}
	SortNewestFirst(emails)

	s.emails = emails
	s.loading = false
	s.lastErr = nil
	s.log.Debug("load committed",
		zap.Uint64("token", uint64(token)),
		zap.Int("count", len(emails)),
	)
	return true
}

// Fail records a failed load. The previous list is kept. Stale failures
// are ignored.
func (s *Store) Fail(token LoadToken, err error) bool {
	if token != s.token {
		return false
	}
	s.loading = false
	s.lastErr = err
	s.log.Error("load failed", zap.Uint64("token", uint64(token)), zap.Error(err))
	return true
}

// Seed primes an empty store, e.g. from the local cache at startup. It
// does not issue a token, so any load in flight still wins.
func (s *Store) Seed(emails []model.Email) bool {
	if len(s.emails) > 0 || len(emails) == 0 {
		return false
	}
	s.emails = append([]model.Email(nil), emails...)
	SortNewestFirst(s.emails)
	return true
}

// Emails returns a copy of the current list.
func (s *Store) Emails() []model.Email {
	out := make([]model.Email, len(s.emails))
	copy(out, s.emails)
	return out
}

// Find returns the email with the given id.
func (s *Store) Find(id string) (model.Email, bool) {
	for _, e := range s.emails {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}

// Len returns the number of emails held.
func (s *Store) Len() int { return len(s.emails) }

// ActionCount returns the total number of action items across all emails.
func (s *Store) ActionCount() int {
	n := 0
	for _, e := range s.emails {
		n += len(e.Actions)
	}
	return n
}

func (s *Store) Loading() bool { return s.loading }
func (s *Store) LastError() error { return s.lastErr }

// SortNewestFirst orders emails by parsed timestamp, newest first. Emails
// without a usable timestamp sort last; ties keep their relative order.
func SortNewestFirst(emails []model.Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		a, b := emails[i].Time, emails[j].Time
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}
