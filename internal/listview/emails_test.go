package listview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

func ids(emails []model.Email) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = e.ID
	}
	return out
}

func baseList() []model.Email {
	return []model.Email{
		{ID: "1", Sender: "alice@example.com", Subject: "Quarterly report", Body: "numbers", Category: model.CategoryWork},
		{ID: "2", Sender: "bob@example.com", Subject: "Dinner", Body: "friday?", Category: model.CategoryPersonal},
		{ID: "3", Sender: "news@example.com", Subject: "Weekly digest", Body: "REPORT inside", Category: model.CategoryNewsletter},
		{ID: "4", Sender: "boss@example.com", Subject: "Urgent", Body: "call me", Category: model.CategoryImportant},
		{ID: "5", Sender: "carol@example.com", Subject: "Standup", Body: "notes", Category: model.CategoryWork},
	}
}

func TestResolve_Filter(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "empty term shows all", term: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "whitespace term shows all", term: "   ", want: []string{"1", "2", "3", "4", "5"}},
		{name: "case-insensitive subject and body", term: "Report", want: []string{"1", "3"}},
		{name: "sender", term: "BOB@", want: []string{"2"}},
		{name: "no match", term: "zebra", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewEmails(nil)
			v.SetBase(baseList())
			v.SetFilter(tt.term)
			assert.Equal(t, tt.want, ids(v.Resolve()))
		})
	}
}

func TestResolve_OverlayIgnoresFilter(t *testing.T) {
	v := NewEmails(nil)
	v.SetBase(baseList())
	v.SetFilter("dinner")

	token := v.BeginSearch("money")
	require.True(t, v.Searching())
	require.True(t, v.CommitSearch(token, []identity.RawEmail{{MongoID: "x"}, {ID: "y"}}))

	assert.True(t, v.HasOverlay())
	assert.False(t, v.Searching())
	assert.Equal(t, []string{"x", "y"}, ids(v.Resolve()))
}

func TestSelect_ClearsOverlay(t *testing.T) {
	v := NewEmails(nil)
	v.SetBase(baseList())
	v.SetFilter("report")
	v.CommitSearch(v.BeginSearch("q"), []identity.RawEmail{{ID: "x"}})

	assert.Equal(t, "x", v.Select("x"))
	assert.False(t, v.HasOverlay())
	assert.Equal(t, []string{"1", "3"}, ids(v.Resolve()))
}

func TestCommitSearch_StaleDiscarded(t *testing.T) {
	v := NewEmails(nil)
	first := v.BeginSearch("first")
	second := v.BeginSearch("second")

	require.True(t, v.CommitSearch(second, []identity.RawEmail{{ID: "new"}}))
	assert.False(t, v.CommitSearch(first, []identity.RawEmail{{ID: "old"}}))
	assert.False(t, v.FailSearch(first, errors.New("late")))

	assert.Equal(t, []string{"new"}, ids(v.Resolve()))
	assert.NoError(t, v.LastError())
}

func TestClearOverlay_InvalidatesInFlightSearch(t *testing.T) {
	v := NewEmails(nil)
	v.SetBase(baseList())
	token := v.BeginSearch("q")
	v.ClearOverlay()

	assert.False(t, v.CommitSearch(token, []identity.RawEmail{{ID: "x"}}))
	assert.False(t, v.HasOverlay())
	assert.Len(t, v.Resolve(), 5)
}

func TestFailSearch_KeepsOverlay(t *testing.T) {
	v := NewEmails(nil)
	v.CommitSearch(v.BeginSearch("a"), []identity.RawEmail{{ID: "x"}})

	token := v.BeginSearch("b")
	assert.True(t, v.FailSearch(token, errors.New("down")))
	assert.True(t, v.HasOverlay())
	assert.False(t, v.Searching())
	assert.EqualError(t, v.LastError(), "down")
}

func TestToggleCategoryOrder_StableAndReversible(t *testing.T) {
	v := NewEmails(nil)
	base := baseList()
	base = append(base, model.Email{ID: "6", Category: model.ParseCategory("Mystery")})
	v.SetBase(base)

	require.True(t, v.ToggleCategoryOrder())
	assert.Equal(t, []string{"4", "2", "1", "5", "3", "6"}, ids(v.Resolve()))

	require.False(t, v.ToggleCategoryOrder())
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(v.Resolve()))
}

func TestResolve_DoesNotMutateBase(t *testing.T) {
	v := NewEmails(nil)
	base := baseList()
	v.SetBase(base)
	v.ToggleCategoryOrder()
	v.Resolve()

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(base))
}

type fakeSearcher struct {
	calls int
	raw   []identity.RawEmail
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]identity.RawEmail, error) {
	f.calls++
	return f.raw, nil
}

func TestSearch_EmptyQueryIssuesNoCall(t *testing.T) {
	v := NewEmails(nil)
	s := &fakeSearcher{}

	cmd, err := v.Search(s, "  ")
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.False(t, v.Searching())
	assert.Zero(t, s.calls)
}

func TestSearch_CommandRoundTrip(t *testing.T) {
	v := NewEmails(nil)
	s := &fakeSearcher{raw: []identity.RawEmail{{MongoID: "hit"}}}

	cmd, err := v.Search(s, " invoices ")
	require.NoError(t, err)

	msg := cmd().(SearchedMsg)
	assert.Equal(t, "invoices", msg.Query)
	assert.True(t, v.Apply(msg))
	assert.Equal(t, []string{"hit"}, ids(v.Resolve()))
	assert.Equal(t, 1, s.calls)
}
