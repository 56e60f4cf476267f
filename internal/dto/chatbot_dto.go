package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ChatId  string `json:"chatId" validate:"omitempty,uuid"`
	Message string `json:"message" validate:"required,max=8000"`
	UserId  string `json:"userId" validate:"omitempty,max=255"`
}

type SendMessageResponse struct {
	Reply  string    `json:"reply"`
	ChatId uuid.UUID `json:"chatId"`
	Title  string    `json:"title"`
}

type CreateSessionRequest struct {
	UserId string `json:"userId" validate:"omitempty,max=255"`
}

type SessionResponse struct {
	Id        uuid.UUID `json:"id"`
	UserId    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type GetSessionResponse struct {
	SessionResponse
	Messages []*MessageResponse `json:"messages"`
}

type DeleteSessionResponse struct {
	Success bool `json:"success"`
}

// SweepResponse reports one retention sweep. Used by background jobs and logs.
type SweepResponse struct {
	UserId          string    `json:"userId"`
	MessagesDeleted int64     `json:"messagesDeleted"`
	SessionsDeleted int64     `json:"sessionsDeleted"`
	Skipped         bool      `json:"skipped"`
	Cutoff          time.Time `json:"cutoff,omitempty"`
}

// SweepJobMessage is the payload of a background sweep job.
type SweepJobMessage struct {
	UserId string `json:"userId"`
}
