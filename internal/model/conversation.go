package model

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is a single entry in the assistant transcript.
type ConversationMessage struct {
	Role    Role
	Content string
}
