// Package assistant runs the question-and-answer conversation shown next
// to the inbox. A question is routed to the email that was selected when
// it was asked, or to the whole mailbox when nothing was selected.
package assistant

import (
	"context"
	"encoding/json"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/model"
)

// FallbackMessage is shown in place of any failed answer.
const FallbackMessage = "Something went wrong."

const (
	ModeEmail  = "Email Mode"
	ModeGlobal = "Global Mode"
)

// Asker sends questions to the backend.
type Asker interface {
	Ask(ctx context.Context, emailID, question string) (json.RawMessage, error)
	AskGlobal(ctx context.Context, question string) (json.RawMessage, error)
}

// ReplyMsg carries the backend answer to request Seq.
type ReplyMsg struct {
	Seq     uint64
	EmailID string
	Payload json.RawMessage
	Err     error
}

// Controller is the idle/awaiting state machine over a Transcript.
type Controller struct {
	asker      Asker
	transcript Transcript
	seq        uint64
	awaiting   bool
	log        *zap.Logger
}

// NewController creates a controller asking questions through a.
func NewController(a Asker, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{asker: a, log: log.Named("assistant")}
}

// Submit appends text as a user message and returns the command asking
// it. selection is the email selected at submit time ("" for none) and
// fixes the target of this request. It reports false, doing nothing,
// when text is blank or an answer is still awaited.
func (c *Controller) Submit(text, selection string) (tea.Cmd, bool) {
	question := strings.TrimSpace(text)
	if question == "" || c.awaiting {
		return nil, false
	}

	c.transcript.Append(model.RoleUser, question)
	c.awaiting = true
	c.seq++

	seq := c.seq
	emailID := selection
	asker := c.asker
	c.log.Debug("question submitted",
		zap.Uint64("seq", seq),
		zap.String("email_id", emailID),
	)

	return func() tea.Msg {
		var (
			payload json.RawMessage
			err     error
		)
		if emailID != "" {
			payload, err = asker.Ask(context.Background(), emailID, question)
		} else {
			payload, err = asker.AskGlobal(context.Background(), question)
		}
		return ReplyMsg{Seq: seq, EmailID: emailID, Payload: payload, Err: err}
	}, true
}

// Update appends the answer carried by msg. Replies to anything but the
// outstanding request are discarded; it reports whether msg applied.
func (c *Controller) Update(msg ReplyMsg) bool {
	if !c.awaiting || msg.Seq != c.seq {
		c.log.Debug("discarding stale reply", zap.Uint64("seq", msg.Seq))
		return false
	}
	c.awaiting = false

	if msg.Err != nil {
		c.log.Error("question failed",
			zap.Uint64("seq", msg.Seq),
			zap.String("email_id", msg.EmailID),
			zap.Error(msg.Err),
		)
		c.transcript.Append(model.RoleAssistant, FallbackMessage)
		return true
	}

	c.transcript.Append(model.RoleAssistant, ExtractText(msg.Payload))
	return true
}

// Reset starts a new conversation. A reply still in flight is dropped.
func (c *Controller) Reset() {
	c.transcript.Reset()
	c.awaiting = false
	c.seq++
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.ConversationMessage {
	return c.transcript.Messages()
}

func (c *Controller) Awaiting() bool { return c.awaiting }

// Mode names the endpoint a question would go to for selection.
func Mode(selection string) string {
	if selection != "" {
		return ModeEmail
	}
	return ModeGlobal
}
