package maillist

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleEmails() []model.Email {
	return []model.Email{
		{ID: "a", Sender: "ann@example.com", Subject: "Quarterly report", Category: model.CategoryWork},
		{ID: "b", Sender: "bob@example.com", Subject: "Lunch?", Category: model.CategoryPersonal},
	}
}

func newModel(t *testing.T) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.SetEmails(sampleEmails(), State{})
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

func TestEnter_EmitsOpen(t *testing.T) {
	m := newModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, OpenMsg{ID: "a"}, cmd())
}

func TestFilterMode_EmitsTerm(t *testing.T) {
	m := newModel(t)

	m, _ = m.Update(runes("/"))
	assert.True(t, m.Typing())
	m = typeText(m, "lunch")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, FilterChangedMsg{Term: "lunch"}, cmd())
	assert.False(t, m.Typing())
}

func TestSearchMode_EmptyQueryDoesNothing(t *testing.T) {
	m := newModel(t)

	m, _ = m.Update(runes("s"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestSearchMode_EmitsRequest(t *testing.T) {
	m := newModel(t)

	m, _ = m.Update(runes("s"))
	m = typeText(m, "invoices")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SearchRequestMsg{Query: "invoices"}, cmd())
}

func TestEsc_ClearsOverlayFirst(t *testing.T) {
	m := newModel(t)
	m.SetEmails(sampleEmails()[:1], State{Overlay: true, Filter: "x"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ClearOverlayMsg{}, cmd())
	assert.Contains(t, m.View(), "AI search results")
}

func TestSetEmails_KeepsCursorOnSameEmail(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(runes("j"))
	require.Equal(t, "b", m.SelectedID())

	reordered := []model.Email{sampleEmails()[1], sampleEmails()[0]}
	m.SetEmails(reordered, State{ByCategory: true})
	assert.Equal(t, "b", m.SelectedID())
}

func TestView_SearchingBanner(t *testing.T) {
	m := newModel(t)
	m.SetEmails(nil, State{Searching: true})
	assert.Contains(t, m.View(), "Searching with AI...")
}

func TestRenderLine(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	d := ItemDelegate{now: func() time.Time { return now }}
	e := model.Email{
		ID:       "a",
		Sender:   "ann@example.com",
		Subject:  "Quarterly report",
		Category: model.CategoryWork,
		Actions:  []model.Action{{Task: "review"}},
		Time:     now.Add(-2 * time.Hour),
	}

	line := d.renderLine(e, false, 120)
	for _, want := range []string{"Work", "ann@example.com", "Quarterly report", "[1]", "2h ago"} {
		assert.True(t, strings.Contains(line, want), "missing %q in %q", want, line)
	}
}
