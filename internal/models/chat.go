package models

// ChatRole tags a chat message.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation with the LLM collaborator.
type ChatMessage struct {
	Role    ChatRole
	Content string
}
