package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    string // Owner for the session's lifetime, never reassigned
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
