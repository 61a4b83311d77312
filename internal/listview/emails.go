// Package listview decides what a list shows: the base inbox narrowed by
// a text filter, or the results of a semantic search layered over it,
// optionally reordered by category or recency.
package listview

import (
	"context"
	"errors"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// ErrEmptyQuery is returned when a semantic search is requested with a
// blank query. No request is issued.
var ErrEmptyQuery = errors.New("search query is empty")

// SearchToken identifies one issued semantic search.
type SearchToken uint64

// Searcher runs a semantic query against the backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]identity.RawEmail, error)
}

// SearchedMsg carries the result of the search issued with Token.
type SearchedMsg struct {
	Token SearchToken
	Query string
	Raw   []identity.RawEmail
	Err   error
}

// Emails resolves the email list view. Exactly one source is active: the
// overlay when present, otherwise the filtered base list.
type Emails struct {
	base   []model.Email
	filter string

	overlay    []model.Email
	hasOverlay bool

	token     SearchToken
	searching bool
	lastErr   error

	byCategory bool

	log *zap.Logger
}

// NewEmails creates an empty resolver.
func NewEmails(log *zap.Logger) *Emails {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emails{log: log.Named("listview")}
}

// SetBase replaces the base list, normally with a copy from the inbox.
func (v *Emails) SetBase(emails []model.Email) {
	v.base = emails
}

// SetFilter sets the text filter. A term that is blank after trimming
// disables filtering.
func (v *Emails) SetFilter(term string) {
	v.filter = term
}

func (v *Emails) Filter() string { return v.filter }

// BeginSearch issues a new search token. Responses to earlier searches
// are stale from now on.
func (v *Emails) BeginSearch(query string) SearchToken {
	v.token++
	v.searching = true
	v.log.Debug("search issued", zap.Uint64("token", uint64(v.token)), zap.String("query", query))
	return v.token
}

// Search validates query and returns a command running it with s.
func (v *Emails) Search(s Searcher, query string) (tea.Cmd, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	token := v.BeginSearch(query)
	return func() tea.Msg {
		raw, err := s.Search(context.Background(), query)
		return SearchedMsg{Token: token, Query: query, Raw: raw, Err: err}
	}, nil
}

// Apply routes a SearchedMsg to CommitSearch or FailSearch.
func (v *Emails) Apply(msg SearchedMsg) bool {
	if msg.Err != nil {
		return v.FailSearch(msg.Token, msg.Err)
	}
	return v.CommitSearch(msg.Token, msg.Raw)
}

// CommitSearch installs results as the overlay. It reports false when
// token is not the most recently issued search.
func (v *Emails) CommitSearch(token SearchToken, raw []identity.RawEmail) bool {
	if token != v.token {
		v.log.Debug("discarding stale search", zap.Uint64("token", uint64(token)))
		return false
	}
	results, dropped := identity.NormalizeAll(raw)
	if dropped > 0 {
		v.log.Warn("dropped search results without identity", zap.Int("count", dropped))
	}
	v.overlay = results
	v.hasOverlay = true
	v.searching = false
	v.lastErr = nil
	return true
}

// FailSearch records a failed search, leaving any existing overlay alone.
func (v *Emails) FailSearch(token SearchToken, err error) bool {
	if token != v.token {
		return false
	}
	v.searching = false
	v.lastErr = err
	v.log.Error("search failed", zap.Uint64("token", uint64(token)), zap.Error(err))
	return true
}

// ClearOverlay drops the overlay and invalidates any search in flight.
func (v *Emails) ClearOverlay() {
	v.overlay = nil
	v.hasOverlay = false
	if v.searching {
		v.token++
		v.searching = false
	}
}

func (v *Emails) HasOverlay() bool { return v.hasOverlay }
func (v *Emails) Searching() bool { return v.searching }
func (v *Emails) LastError() error { return v.lastErr }

// Select returns id after consuming the overlay. Overlay results are
// single use: the next Resolve shows the base list again.
func (v *Emails) Select(id string) string {
	v.ClearOverlay()
	return id
}

// ToggleCategoryOrder flips category ordering and returns the new state.
func (v *Emails) ToggleCategoryOrder() bool {
	v.byCategory = !v.byCategory
	return v.byCategory
}

func (v *Emails) CategoryOrder() bool { return v.byCategory }

// Resolve returns the list to render. The result is a fresh slice.
func (v *Emails) Resolve() []model.Email {
	var out []model.Email
	if v.hasOverlay {
		out = append(out, v.overlay...)
	} else {
		out = filter(v.base, v.filter)
	}
	if v.byCategory {
		SortByCategory(out)
	}
	return out
}

func filter(emails []model.Email, term string) []model.Email {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Email, 0, len(emails))
	for _, e := range emails {
		if term == "" || e.Matches(term) {
			out = append(out, e)
		}
	}
	return out
}

// SortByCategory orders emails by category priority. Emails in the same
// category keep their relative order.
func SortByCategory(emails []model.Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].Category.Rank() < emails[j].Category.Rank()
	})
}
