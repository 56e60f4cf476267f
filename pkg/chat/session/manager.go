package session

import (
	"context"
	"time"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Resolved is the concrete session an inbound message will be appended to.
type Resolved struct {
	Session *entity.ChatSession
	Created bool
	// PriorMessages counts what was stored before the current turn. Always 0 for created sessions.
	PriorMessages int64
}

// Manager handles session operations
type Manager struct{}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{}
}

// Resolve looks up an existing reference and falls back to creating a fresh session when the id is unknown.
func (m *Manager) Resolve(ctx context.Context, uow unitofwork.UnitOfWork, ref Ref, ownerId string, now time.Time) (*Resolved, error) {
	if id, ok := ref.Existing(); ok {
		session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		if session != nil {
			count, err := uow.ChatMessageRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: session.Id})
			if err != nil {
				return nil, err
			}
			return &Resolved{Session: session, PriorMessages: count}, nil
		}
	}

	session, err := m.Create(ctx, uow, ownerId, now)
	if err != nil {
		return nil, err
	}
	return &Resolved{Session: session, Created: true}, nil
}

// Create persists an empty session owned by ownerId, or by the guest sentinel when ownerId is blank.
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, ownerId string, now time.Time) (*entity.ChatSession, error) {
	if ownerId == "" {
		ownerId = constant.GuestUserId
	}
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    ownerId,
		Title:     constant.DefaultChatTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateTitle rewrites only the title. Activity time is left to Touch.
func (m *Manager) UpdateTitle(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, title string) error {
	session.Title = title
	return uow.ChatSessionRepository().Update(ctx, session)
}

// Touch records activity on the session.
func (m *Manager) Touch(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, now time.Time) error {
	session.UpdatedAt = now
	return uow.ChatSessionRepository().Update(ctx, session)
}
