package assistant

import (
	"sync"

	"github.com/nhle/mailmind/internal/model"
)

// Transcript is the ordered, append-only message history of one
// assistant session.
type Transcript struct {
	mu       sync.Mutex
	messages []model.ConversationMessage
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(role model.Role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, model.ConversationMessage{
		Role:    role,
		Content: content,
	})
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []model.ConversationMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]model.ConversationMessage, len(t.messages))
	copy(result, t.messages)
	return result
}

// Reset starts a new, empty transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = nil
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.messages)
}
