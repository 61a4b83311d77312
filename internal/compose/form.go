package compose

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// ErrMissingFields is returned when a draft is saved without a recipient,
// subject, or body. Nothing is sent.
var ErrMissingFields = errors.New("recipient, subject and body are required")

// AutoDraftInstruction is the instruction used by the detail view's
// one-key reply draft.
const AutoDraftInstruction = "professional reply"

// Saver persists a new draft on the backend.
type Saver interface {
	AddDraft(ctx context.Context, recipient, subject, body string) (identity.RawDraft, error)
}

// SavedMsg reports the outcome of Form.Save.
type SavedMsg struct {
	Draft identity.RawDraft
	Err   error
}

// Form is the compose form state. The body is owned by the Engine.
type Form struct {
	Recipient   string
	Subject     string
	Instruction string

	// ReplyTo is the id of the email being answered, "" for a new email.
	ReplyTo string

	saving bool
}

// NewReply returns a form answering e: the recipient is the sender and
// the subject is prefixed with "Re: " unless it already is.
func NewReply(e model.Email) Form {
	subject := e.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	return Form{
		Recipient: e.Sender,
		Subject:   subject,
		ReplyTo:   e.ID,
	}
}

// Target returns the generation target for this form.
func (f Form) Target() string {
	if f.ReplyTo == "" {
		return NewEmailTarget
	}
	return f.ReplyTo
}

// Validate checks that a draft with body could be saved.
func (f Form) Validate(body string) error {
	if strings.TrimSpace(f.Recipient) == "" ||
		strings.TrimSpace(f.Subject) == "" ||
		strings.TrimSpace(body) == "" {
		return ErrMissingFields
	}
	return nil
}

// Save validates the form and returns a command storing the draft.
func (f *Form) Save(s Saver, body string) (tea.Cmd, error) {
	if err := f.Validate(body); err != nil {
		return nil, err
	}
	f.saving = true
	recipient := strings.TrimSpace(f.Recipient)
	subject := strings.TrimSpace(f.Subject)
	return func() tea.Msg {
		d, err := s.AddDraft(context.Background(), recipient, subject, body)
		return SavedMsg{Draft: d, Err: err}
	}, nil
}

// Saved clears the saving flag once a SavedMsg has been handled.
func (f *Form) Saved() { f.saving = false }

func (f Form) Saving() bool { return f.saving }
