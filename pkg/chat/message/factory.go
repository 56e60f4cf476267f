package message

import (
	"context"
	"time"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// minGap keeps a reply strictly after the message it answers when the clock does not move.
const minGap = time.Millisecond

// Factory handles chat message creation and persistence
type Factory struct{}

// NewFactory creates a new message factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateUserMessage builds a user turn. A blank owner is stored as the guest sentinel.
func (f *Factory) CreateUserMessage(sessionId uuid.UUID, ownerId, content string, now time.Time) *entity.ChatMessage {
	if ownerId == "" {
		ownerId = constant.GuestUserId
	}
	return &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		UserId:        ownerId,
		Role:          constant.ChatMessageRoleUser,
		Content:       content,
		CreatedAt:     now,
	}
}

// CreateModelMessage builds a model turn timestamped strictly after `after`.
func (f *Factory) CreateModelMessage(sessionId uuid.UUID, content string, after, now time.Time) *entity.ChatMessage {
	if !now.After(after) {
		now = after.Add(minGap)
	}
	return &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		UserId:        constant.ModelUserId,
		Role:          constant.ChatMessageRoleModel,
		Content:       content,
		CreatedAt:     now,
	}
}

// Save appends the message. It does not touch the parent session.
func (f *Factory) Save(ctx context.Context, uow unitofwork.UnitOfWork, message *entity.ChatMessage) error {
	return uow.ChatMessageRepository().Create(ctx, message)
}
