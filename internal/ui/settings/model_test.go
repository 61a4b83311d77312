package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/credential"
	"github.com/nhle/mailmind/internal/keys"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/ui"
)

type mockPromptClient struct {
	mock.Mock
}

func (m *mockPromptClient) GetPrompts(ctx context.Context) (model.Prompts, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(model.Prompts)
	return p, args.Error(1)
}

func (m *mockPromptClient) UpdatePrompts(ctx context.Context, prompts model.Prompts) error {
	return m.Called(ctx, prompts).Error(0)
}

// run executes cmd and returns every message it produces, flattening batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(m Model, cmd tea.Cmd) Model {
	for _, msg := range run(cmd) {
		switch msg.(type) {
		case promptsLoadedMsg, promptsSavedMsg:
			m, _ = m.Update(msg)
		}
	}
	return m
}

func TestOpen_LoadsSortedPrompts(t *testing.T) {
	client := &mockPromptClient{}
	client.On("GetPrompts", mock.Anything).
		Return(model.Prompts{"summarize": "S", "classify": "C"}, nil)

	m := New(client, nil, model.IMAPConfig{}, keys.DefaultKeyMap(), 80, 30)
	cmd := m.Open()
	assert.Equal(t, ModeLoading, m.Mode())

	m = feed(m, cmd)
	assert.Equal(t, ModeList, m.Mode())
	assert.Equal(t, []string{"classify", "summarize"}, m.names)
	assert.Contains(t, m.View(), "classify")
	client.AssertExpectations(t)
}

func TestSave_SendsEditedPrompts(t *testing.T) {
	client := &mockPromptClient{}
	client.On("GetPrompts", mock.Anything).Return(model.Prompts{"classify": "C"}, nil)
	client.On("UpdatePrompts", mock.Anything, model.Prompts{"classify": "edited"}).Return(nil)

	m := New(client, nil, model.IMAPConfig{}, keys.DefaultKeyMap(), 80, 30)
	m = feed(m, m.Open())

	m.prompts["classify"] = "edited"
	m.dirty = true

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, ModeSaving, m.Mode())
	m = feed(m, cmd)

	assert.False(t, m.Dirty())
	assert.Equal(t, ModeList, m.Mode())
	client.AssertExpectations(t)
}

func TestReset_ReloadsFromBackend(t *testing.T) {
	client := &mockPromptClient{}
	client.On("GetPrompts", mock.Anything).Return(model.Prompts{"classify": "C"}, nil)

	m := New(client, nil, model.IMAPConfig{}, keys.DefaultKeyMap(), 80, 30)
	m = feed(m, m.Open())
	m.prompts["classify"] = "unsaved"
	m.dirty = true

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = feed(m, cmd)

	assert.False(t, m.Dirty())
	assert.Equal(t, model.Prompts{"classify": "C"}, m.Prompts())
	client.AssertNumberOfCalls(t, "GetPrompts", 2)
}

func TestLoadFailure_Notifies(t *testing.T) {
	m := New(&mockPromptClient{}, nil, model.IMAPConfig{}, keys.DefaultKeyMap(), 80, 30)

	m, cmd := m.Update(promptsLoadedMsg{err: errors.New("boom")})
	require.NotNil(t, cmd)
	notice, ok := cmd().(ui.NoticeMsg)
	require.True(t, ok)
	assert.True(t, notice.Error)
	assert.Equal(t, ModeList, m.Mode())
}

func TestSaveIMAP_StoresPasswordInKeyring(t *testing.T) {
	creds := credential.NewStore(keyring.NewArrayKeyring(nil))
	m := New(&mockPromptClient{}, creds, model.IMAPConfig{Limit: 50}, keys.DefaultKeyMap(), 80, 30)

	m.startIMAPForm()
	m.fb.imapHost = " imap.example.com "
	m.fb.imapPort = "993"
	m.fb.imapUsername = "ann@example.com"
	m.fb.imapPassword = "secret"
	m.fb.imapTLS = true

	cmd := m.saveIMAP()
	require.NotNil(t, cmd)
	saved, ok := cmd().(IMAPSavedMsg)
	require.True(t, ok)
	assert.Equal(t, model.IMAPConfig{
		Host: "imap.example.com", Port: "993", Username: "ann@example.com", TLS: true, Limit: 50,
	}, saved.Config)

	pw, err := creds.Get(credential.IMAPPasswordKey("ann@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)
}

func TestValidators(t *testing.T) {
	assert.Error(t, validatePort(""))
	assert.Error(t, validatePort("99a"))
	assert.NoError(t, validatePort("993"))
	assert.Error(t, validateRequired("Host")("  "))
}
