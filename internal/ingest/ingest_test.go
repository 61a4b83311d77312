package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartMessage = "From: Alice Example <alice@example.com>\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Project kickoff\r\n" +
	"Date: Mon, 01 Jul 2024 09:30:00 +0200\r\n" +
	"Message-Id: <kickoff-1@example.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Kickoff is on Thursday.\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Kickoff is on <b>Thursday</b>.</p>\r\n" +
	"--b1--\r\n"

const htmlOnlyMessage = "From: news@example.com\r\n" +
	"Subject: Digest\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Top&nbsp;stories</p><p>Second &amp; third</p>\r\n"

func TestParseMessage_Multipart(t *testing.T) {
	email, err := ParseMessage(strings.NewReader(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "kickoff-1@example.com", email.ID)
	assert.Equal(t, "alice@example.com", email.Sender)
	assert.Equal(t, "Project kickoff", email.Subject)
	assert.Equal(t, "2024-07-01T07:30:00Z", email.Timestamp)
	assert.Equal(t, "Kickoff is on Thursday.", email.Body)
}

func TestParseMessage_HTMLOnly(t *testing.T) {
	email, err := ParseMessage(strings.NewReader(htmlOnlyMessage))
	require.NoError(t, err)
	assert.Equal(t, "Top stories\n\nSecond & third", email.Body)
}

func TestCheckExtension(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"emails.json", true},
		{"EXPORT.JSON", true},
		{"message.eml", true},
		{"notes.txt", false},
		{"archive.mbox", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckExtension(tt.path)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedFile)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	t.Run("json passes through", func(t *testing.T) {
		p, err := Prepare(write("emails.json", `[{"sender":"a"}]`))
		require.NoError(t, err)
		assert.Equal(t, "emails.json", p.Filename)
		assert.Equal(t, `[{"sender":"a"}]`, string(p.Data))
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		_, err := Prepare(write("broken.json", `[{`))
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("eml converted", func(t *testing.T) {
		p, err := Prepare(write("kickoff.eml", multipartMessage))
		require.NoError(t, err)
		assert.Equal(t, "kickoff.json", p.Filename)

		var entries []map[string]string
		require.NoError(t, json.Unmarshal(p.Data, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Project kickoff", entries[0]["subject"])
		assert.Equal(t, "alice@example.com", entries[0]["sender"])
	})

	t.Run("other extension never read", func(t *testing.T) {
		_, err := Prepare(filepath.Join(dir, "missing.txt"))
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})
}

func TestFromFetched_EnvelopeWins(t *testing.T) {
	env := &imap.Envelope{
		Date:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Subject:   "Envelope subject",
		MessageID: "env-1@example.com",
		From:      []imap.Address{{Name: "Carol", Mailbox: "carol", Host: "example.com"}},
	}

	email := fromFetched(env, []byte(multipartMessage))
	assert.Equal(t, "env-1@example.com", email.ID)
	assert.Equal(t, "Envelope subject", email.Subject)
	assert.Equal(t, "carol@example.com", email.Sender)
	assert.Equal(t, "2024-05-01T12:00:00Z", email.Timestamp)
	assert.Equal(t, "Kickoff is on Thursday.", email.Body)
}

func TestFromFetched_NoEnvelope(t *testing.T) {
	email := fromFetched(nil, []byte(multipartMessage))
	assert.Equal(t, "Project kickoff", email.Subject)
}
