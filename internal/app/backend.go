package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/backend"
	"github.com/nhle/mailmind/internal/credential"
	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/ingest"
	"github.com/nhle/mailmind/internal/model"
)

// Backend is everything the root model needs from the remote service.
// *backend.Client implements it.
type Backend interface {
	Health(ctx context.Context) (string, error)
	ListEmails(ctx context.Context) ([]identity.RawEmail, error)
	FetchDrafts(ctx context.Context) ([]identity.RawDraft, error)
	AddDraft(ctx context.Context, recipient, subject, body string) (identity.RawDraft, error)
	Search(ctx context.Context, query string) ([]identity.RawEmail, error)
	GenerateDraft(ctx context.Context, target, instruction string) (string, error)
	Ask(ctx context.Context, emailID, question string) (json.RawMessage, error)
	AskGlobal(ctx context.Context, question string) (json.RawMessage, error)
	UploadEmails(ctx context.Context, filename string, payload []byte) (backend.UploadStatus, error)
	GetPrompts(ctx context.Context) (model.Prompts, error)
	UpdatePrompts(ctx context.Context, prompts model.Prompts) error
}

// healthTimeout bounds the startup health check.
const healthTimeout = 10 * time.Second

// healthMsg carries the result of the startup health check.
type healthMsg struct {
	status string
	err    error
}

// uploadedMsg reports the outcome of a file upload or IMAP import.
type uploadedMsg struct {
	source string
	status backend.UploadStatus
	count  int
	err    error
}

// checkHealth pings the backend once.
func (m Model) checkHealth() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		status, err := b.Health(ctx)
		return healthMsg{status: status, err: err}
	}
}

// upload returns a command preparing path and sending it to the backend.
// Unsupported files fail before any request.
func (m Model) upload(path string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		payload, err := ingest.Prepare(path)
		if err != nil {
			return uploadedMsg{source: path, err: err}
		}
		status, err := b.UploadEmails(context.Background(), payload.Filename, payload.Data)
		return uploadedMsg{source: payload.Filename, status: status, err: err}
	}
}

// errIMAPNotConfigured is returned when import is requested before an
// account has been saved in settings.
var errIMAPNotConfigured = errors.New("IMAP account is not configured")

// importIMAP returns a command fetching recent mail over IMAP and
// uploading it in the JSON upload format.
func (m Model) importIMAP() (tea.Cmd, error) {
	cfg := m.cfg.IMAP
	if cfg.Host == "" || cfg.Username == "" || m.creds == nil {
		return nil, errIMAPNotConfigured
	}
	password, err := m.creds.Get(credential.IMAPPasswordKey(cfg.Username))
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, errIMAPNotConfigured
		}
		return nil, err
	}

	b := m.backend
	importer := ingest.NewIMAPImporter(cfg, password, m.log)
	return func() tea.Msg {
		const source = "IMAP"
		raws, err := importer.Fetch(context.Background(), 0)
		if err != nil {
			return uploadedMsg{source: source, err: err}
		}
		if len(raws) == 0 {
			return uploadedMsg{source: source}
		}
		payload, err := ingest.Encode("imap-import.json", raws)
		if err != nil {
			return uploadedMsg{source: source, err: err}
		}
		status, err := b.UploadEmails(context.Background(), payload.Filename, payload.Data)
		return uploadedMsg{source: source, status: status, count: len(raws), err: err}
	}, nil
}

// uploadNotice renders the status bar text for msg.
func uploadNotice(msg uploadedMsg) string {
	switch {
	case msg.err != nil:
		return fmt.Sprintf("Upload from %s failed: %v", msg.source, msg.err)
	case msg.status.Message != "":
		return msg.status.Message
	case msg.count > 0:
		return fmt.Sprintf("Imported %d emails from %s", msg.count, msg.source)
	case msg.status.Inserted > 0:
		return fmt.Sprintf("Uploaded %d emails from %s", msg.status.Inserted, msg.source)
	case msg.source == "IMAP":
		return "No new mail to import"
	default:
		return fmt.Sprintf("Uploaded %s", msg.source)
	}
}

// logCmdError logs err when non-nil under op.
func (m Model) logCmdError(op string, err error) {
	if err != nil {
		m.log.Error(op+" failed", zap.Error(err))
	}
}
