package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailmind/internal/model"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		mongoID string
		want    string
		wantErr bool
	}{
		{"only_id", "a", "", "a", false},
		{"only_mongo_id", "", "b", "b", false},
		{"both_equal", "c", "c", "c", false},
		{"both_differ_id_wins", "d", "e", "d", false},
		{"whitespace_is_empty", "  ", "f", "f", false},
		{"neither", "", "", "", true},
		{"whitespace_only", " ", "\t", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, mongoID, err := Reconcile(tt.id, tt.mongoID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
			assert.Equal(t, id, mongoID)
		})
	}
}

func TestFill_BothFieldsSetAndEqual(t *testing.T) {
	raws := []RawEmail{
		{ID: "1"},
		{MongoID: "2"},
		{ID: "3", MongoID: "3"},
		{ID: "4", MongoID: "x"},
	}

	for _, r := range raws {
		filled, err := Fill(r)
		require.NoError(t, err)
		assert.NotEmpty(t, filled.ID)
		assert.Equal(t, filled.ID, filled.MongoID)
	}
}

func TestNormalize(t *testing.T) {
	e, err := Normalize(RawEmail{
		MongoID:   "abc",
		Sender:    "alice@example.com",
		Subject:   "Hello",
		Timestamp: "2024-01-01T10:00:00Z",
		Category:  "WORK",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, model.CategoryWork, e.Category)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), e.Time)
	assert.NotNil(t, e.Actions)
}

func TestNormalize_CategoryDefaults(t *testing.T) {
	for _, raw := range []string{"", "unknown", "  "} {
		e, err := Normalize(RawEmail{ID: "x", Category: raw})
		require.NoError(t, err)
		assert.Equal(t, model.CategoryOther, e.Category, "category %q", raw)
	}
}

func TestNormalizeAll_DropsMissingIdentity(t *testing.T) {
	emails, dropped := NormalizeAll([]RawEmail{
		{ID: "a"},
		{Subject: "no identity"},
		{MongoID: "b"},
	})

	assert.Equal(t, 1, dropped)
	require.Len(t, emails, 2)
	assert.Equal(t, "a", emails[0].ID)
	assert.Equal(t, "b", emails[1].ID)
}

func TestNormalizeDrafts(t *testing.T) {
	drafts, dropped := NormalizeDrafts([]RawDraft{
		{MongoID: "d1", Recipient: "bob@example.com", Timestamp: "2024-03-01"},
		{Recipient: "nobody"},
	})

	assert.Equal(t, 1, dropped)
	require.Len(t, drafts, 1)
	assert.Equal(t, "d1", drafts[0].ID)
	assert.False(t, drafts[0].Time.IsZero())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"2024-01-01", false},
		{"2024-01-01T10:00:00", false},
		{"2024-01-01 10:00:00", false},
		{"2024-01-01T10:00:00.123456", false},
		{"2024-01-01T10:00:00+02:00", false},
		{"Mon, 02 Jan 2006 15:04:05 -0700", false},
		{"", true},
		{"not a date", true},
	}

	for _, tt := range tests {
		got := ParseTimestamp(tt.in)
		assert.Equal(t, tt.zero, got.IsZero(), "input %q", tt.in)
	}
}
