package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage carries its own UserId copy so retention sweeps can query messages without joining sessions.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        string
	Role          string
	Content       string
	CreatedAt     time.Time
}

func (m *ChatMessage) IsUser() bool {
	return m.Role == "user"
}
