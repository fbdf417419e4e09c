package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies who spoke a turn in a conversation
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is a single message in a conversation transcript
type ChatTurn struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Position       int       `json:"position"`
	Role           ChatRole  `json:"role"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation represents a Legal Assistant chat session
type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Turns     []ChatTurn `json:"turns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasUserTurn reports whether the user has said anything yet
func (c *Conversation) HasUserTurn() bool {
	for _, turn := range c.Turns {
		if turn.Role == RoleUser {
			return true
		}
	}
	return false
}
