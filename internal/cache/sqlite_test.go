package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/cache"
	"github.com/nhle/mailmind/internal/model"
	"github.com/nhle/mailmind/internal/testutil"
)

func TestEmails_RoundTripPreservesOrder(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	in := []model.Email{
		{
			ID: "b", Sender: "bob@example.com", Subject: "Later", Timestamp: "2024-02-01",
			Category: model.CategoryWork, Actions: []model.Action{{Task: "reply", Deadline: "Friday"}},
		},
		{ID: "a", Subject: "Earlier", Timestamp: "2024-01-01", Category: model.CategoryOther, Actions: []model.Action{}},
	}
	require.NoError(t, c.SaveEmails(ctx, in))

	out, err := c.LoadEmails(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, []model.Action{{Task: "reply", Deadline: "Friday"}}, out[0].Actions)
	assert.Equal(t, model.CategoryWork, out[0].Category)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), out[0].Time)
}

func TestSaveEmails_ReplacesSnapshot(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveEmails(ctx, []model.Email{{ID: "old"}, {ID: "keep"}}))
	require.NoError(t, c.SaveEmails(ctx, []model.Email{{ID: "keep"}, {ID: "new"}}))

	out, err := c.LoadEmails(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "keep", out[0].ID)
	assert.Equal(t, "new", out[1].ID)
}

func TestDrafts_RoundTrip(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveDrafts(ctx, []model.Draft{
		{ID: "d2", Recipient: "x@example.com", Subject: "Hi", Body: "Body"},
		{ID: "d1", Timestamp: "2024-03-01T10:00:00"},
	}))

	out, err := c.LoadDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "d2", out[0].ID)
	assert.True(t, out[0].Time.IsZero())
	assert.False(t, out[1].Time.IsZero())
}

func TestSyncedAt(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	at, err := c.SyncedAt(ctx, cache.SnapshotEmails)
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	require.NoError(t, c.SaveEmails(ctx, nil))
	at, err = c.SyncedAt(ctx, cache.SnapshotEmails)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestMigrations_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := cache.NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveEmails(ctx, []model.Email{{ID: "persisted"}}))
	require.NoError(t, first.Close())

	second, err := cache.NewSQLiteCache(path)
	require.NoError(t, err)
	defer second.Close()

	out, err := second.LoadEmails(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "persisted", out[0].ID)
}
