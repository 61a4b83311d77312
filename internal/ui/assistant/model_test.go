package assistant

import (
	"context"
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/assistant"
	"github.com/nhle/mailmind/internal/keys"
)

type stubAsker struct{}

func (stubAsker) Ask(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"answer":"scoped"}`), nil
}

func (stubAsker) AskGlobal(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"answer":"global"}`), nil
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestEnter_EmitsAsk(t *testing.T) {
	ctrl := assistant.NewController(stubAsker{}, nil)
	m := New(ctrl, keys.DefaultKeyMap(), 80, 30)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "blank input is not submitted")

	m = typeText(m, "who wrote?")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, AskMsg{Text: "who wrote?"}, cmd())
	assert.Contains(t, m.View(), assistant.ModeGlobal)
}

func TestEnter_IgnoredWhileAwaiting(t *testing.T) {
	ctrl := assistant.NewController(stubAsker{}, nil)
	_, ok := ctrl.Submit("first", "e1")
	require.True(t, ok)

	m := New(ctrl, keys.DefaultKeyMap(), 80, 30)
	m.SetMode(assistant.Mode("e1"))
	m = typeText(m, "second")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m.Refresh()
	view := m.View()
	assert.Contains(t, view, assistant.ModeEmail)
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "Thinking...")
}

func TestEsc_Closes(t *testing.T) {
	m := New(assistant.NewController(stubAsker{}, nil), keys.DefaultKeyMap(), 80, 30)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
