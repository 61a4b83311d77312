package inbox

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

func TestCommit_StaleLoadDiscarded(t *testing.T) {
	s := New(nil)

	first := s.BeginLoad()
	second := s.BeginLoad()

	ok := s.Commit(second, []identity.RawEmail{{MongoID: "b", Timestamp: "2024-02-01"}})
	require.True(t, ok)

	ok = s.Commit(first, []identity.RawEmail{{MongoID: "a", Timestamp: "2024-01-01"}})
	assert.False(t, ok)

	assert.Equal(t, []string{"b"}, ids(s.Emails()))
	assert.False(t, s.Loading())
}

func TestCommit_SortsNewestFirstWithUnparsableLast(t *testing.T) {
	s := New(nil)
	token := s.BeginLoad()
	assert.True(t, s.Loading())

	s.Commit(token, []identity.RawEmail{
		{ID: "old", Timestamp: "2023-05-01T10:00:00"},
		{ID: "bad", Timestamp: "not a date"},
		{ID: "new", Timestamp: "2024-05-01T10:00:00Z"},
		{ID: "none"},
		{ID: "mid", Timestamp: "2024-01-01"},
	})

	assert.Equal(t, []string{"new", "mid", "old", "bad", "none"}, ids(s.Emails()))
	assert.False(t, s.Loading())
}

func TestCommit_DropsEntitiesWithoutIdentity(t *testing.T) {
	s := New(nil)
	token := s.BeginLoad()
	s.Commit(token, []identity.RawEmail{{ID: "a"}, {Subject: "orphan"}, {MongoID: "c"}})

	emails := s.Emails()
	require.Len(t, emails, 2)
	for _, e := range emails {
		assert.NotEmpty(t, e.ID)
	}
}

func TestFail_KeepsPreviousContents(t *testing.T) {
	s := New(nil)
	s.Commit(s.BeginLoad(), []identity.RawEmail{{ID: "a"}})

	token := s.BeginLoad()
	boom := errors.New("boom")
	assert.True(t, s.Fail(token, boom))

	assert.Equal(t, []string{"a"}, ids(s.Emails()))
	assert.False(t, s.Loading())
	assert.Equal(t, boom, s.LastError())
}

func TestFail_StaleIgnored(t *testing.T) {
	s := New(nil)
	first := s.BeginLoad()
	second := s.BeginLoad()

	assert.False(t, s.Fail(first, errors.New("late")))
	assert.True(t, s.Loading())
	assert.NoError(t, s.LastError())

	s.Commit(second, nil)
	assert.False(t, s.Loading())
}

func TestEmails_ReturnsCopy(t *testing.T) {
	s := New(nil)
	s.Commit(s.BeginLoad(), []identity.RawEmail{{ID: "a", Subject: "x"}})

	got := s.Emails()
	got[0].Subject = "mutated"

	e, ok := s.Find("a")
	require.True(t, ok)
	assert.Equal(t, "x", e.Subject)
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	s := New(nil)
	assert.True(t, s.Seed([]model.Email{{ID: "cached"}}))
	assert.False(t, s.Seed([]model.Email{{ID: "other"}}))
	assert.Equal(t, []string{"cached"}, ids(s.Emails()))

	// A load issued after seeding still replaces the list.
	s.Commit(s.BeginLoad(), []identity.RawEmail{{ID: "fresh"}})
	assert.Equal(t, []string{"fresh"}, ids(s.Emails()))
}

func TestActionCount(t *testing.T) {
	s := New(nil)
	s.Commit(s.BeginLoad(), []identity.RawEmail{
		{ID: "a", Actions: []model.Action{{Task: "t1"}, {Task: "t2"}}},
		{ID: "b"},
		{ID: "c", Actions: []model.Action{{Task: "t3"}}},
	})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.ActionCount())
}

type fakeLister struct {
	raw []identity.RawEmail
	err error
}

func (f fakeLister) ListEmails(context.Context) ([]identity.RawEmail, error) {
	return f.raw, f.err
}

func TestLoad_CommandProducesTaggedMessage(t *testing.T) {
	s := New(nil)
	cmd := s.Load(fakeLister{raw: []identity.RawEmail{{ID: "a"}}})
	require.NotNil(t, cmd)
	assert.True(t, s.Loading())

	msg, ok := cmd().(LoadedMsg)
	require.True(t, ok)
	assert.Equal(t, LoadToken(1), msg.Token)
	assert.True(t, s.Apply(msg))
	assert.Equal(t, []string{"a"}, ids(s.Emails()))

	failing := s.Load(fakeLister{err: errors.New("down")})
	assert.True(t, s.Apply(failing().(LoadedMsg)))
	assert.Equal(t, []string{"a"}, ids(s.Emails()))
	assert.EqualError(t, s.LastError(), "down")
}
