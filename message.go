package recap

import (
	"fmt"
	"hash/fnv"

	"github.com/tmc/langchaingo/llms"
)

// Role identifies who authored a message. The set is fixed —
// conversations the engine observes only ever contain these
// three roles.
type Role string

const (
	// RoleSystem marks behavior-defining messages. System
	// messages are always preserved verbatim across a
	// compaction, in their original relative order.
	RoleSystem Role = "system"

	// RoleUser marks messages authored by the end user.
	RoleUser Role = "user"

	// RoleAssistant marks model output. The synthetic summary
	// message produced by compaction also carries this role so
	// downstream consumers treat it as prior context rather
	// than a system directive.
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation history. Messages
// are immutable once created; ordering within a conversation is
// significant and preserved everywhere in this package.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// System creates a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User creates a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant creates an assistant-role message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// LLMContent converts the message to a LangChainGo message.
// Consumers use this to send a (possibly compacted) history
// back to a model.
func (m Message) LLMContent() llms.MessageContent {
	return llms.TextParts(m.Role.llmRole(), m.Content)
}

// llmRole maps a Role to the LangChainGo chat message type.
func (r Role) llmRole() llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// DeriveConversationID produces a stable conversation id for
// callers that do not supply one. The id is a hash of the first
// message, so every request carrying the same opening message
// lands in the same conversation record.
//
// Returns "default" for an empty history.
func DeriveConversationID(history []Message) string {
	if len(history) == 0 {
		return "default"
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s", history[0].Role, history[0].Content)
	return fmt.Sprintf("%x", h.Sum64())
}
