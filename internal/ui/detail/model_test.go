package detail

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
)

func sampleEmail(id string) model.Email {
	return model.Email{
		ID:       id,
		Sender:   "ann@example.com",
		Subject:  "Quarterly report",
		Body:     "Please review the attached numbers.",
		Category: model.CategoryWork,
		Actions: []model.Action{
			{Task: "Review numbers", Deadline: "Friday"},
			{Task: "Reply to Ann"},
		},
		Summary: "Ann needs a review.",
	}
}

func TestToggleAction_KeyedByEmail(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetEmail(sampleEmail("a"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.True(t, m.Done("a", 0))
	assert.False(t, m.Done("a", 1))

	m.SetEmail(sampleEmail("b"))
	assert.False(t, m.Done("b", 0))

	m.SetEmail(sampleEmail("a"))
	assert.True(t, m.Done("a", 0), "completion survives switching emails")

	m.ToggleAction(0)
	assert.False(t, m.Done("a", 0))
}

func TestCursorMovesOverActions(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetEmail(sampleEmail("a"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.False(t, m.Done("a", 0))
	assert.True(t, m.Done("a", 1))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.ToggleAction(5)
	assert.True(t, m.Done("a", 1))
}

func TestKeys_EmitMessages(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	e := sampleEmail("a")
	m.SetEmail(e)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	require.NotNil(t, cmd)
	assert.Equal(t, ReplyMsg{Email: e}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	require.NotNil(t, cmd)
	assert.Equal(t, AutoDraftMsg{Email: e}, cmd())
}

func TestView(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 40)
	assert.Contains(t, m.View(), "No email selected")

	m.SetEmail(sampleEmail("a"))
	view := m.View()
	assert.Contains(t, view, "Quarterly report")
	assert.Contains(t, view, "Ann needs a review.")
	assert.Contains(t, view, "Review numbers")

	m.Clear()
	assert.Equal(t, "", m.EmailID())
}
