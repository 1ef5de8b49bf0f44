package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chat roles accepted from clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MaxMessageLength is the longest message content accepted, in characters.
const MaxMessageLength = 4000

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of a chat request.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// Validate checks that the conversation is non-empty and every message has a known
// role and content between 1 and MaxMessageLength characters.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant, RoleSystem:
		default:
			return fmt.Errorf("messages[%d]: invalid role %q", i, m.Role)
		}
		n := utf8.RuneCountInString(m.Content)
		if n == 0 {
			return fmt.Errorf("messages[%d]: content cannot be empty", i)
		}
		if n > MaxMessageLength {
			return fmt.Errorf("messages[%d]: content exceeds %d characters", i, MaxMessageLength)
		}
	}
	return nil
}

// LatestUserMessage returns the last message with role "user".
func LatestUserMessage(messages []ChatMessage) (ChatMessage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i], true
		}
	}
	return ChatMessage{}, false
}
