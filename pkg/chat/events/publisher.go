package events

import (
	"context"
	"time"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/pkg/logger"
	pkgEvents "arogya-chat-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for chat operations. Implementations never fail the caller.
type Publisher interface {
	PublishMessageSent(ctx context.Context, sessionId uuid.UUID, ownerId string, createdSession, fallbackReply bool)
	PublishSessionDeleted(ctx context.Context, sessionId uuid.UUID, ownerId string, messagesDeleted int64)
	PublishHistorySwept(ctx context.Context, ownerId, policy string, messagesDeleted, sessionsDeleted int64, cutoff time.Time)
	PublishRetentionUpdated(ctx context.Context, ownerId, previous, current string)
}

// BusPublisher implements Publisher over any event bus. A nil bus drops events.
type BusPublisher struct {
	bus    pkgEvents.Publisher
	logger logger.ILogger
	now    func() time.Time
}

func NewBusPublisher(bus pkgEvents.Publisher, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.bus == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: p.now(),
	}

	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *BusPublisher) PublishMessageSent(ctx context.Context, sessionId uuid.UUID, ownerId string, createdSession, fallbackReply bool) {
	p.publish(ctx, constant.EventChatMessageSent, map[string]interface{}{
		"chat_id":         sessionId.String(),
		"user_id":         ownerId,
		"created_session": createdSession,
		"fallback_reply":  fallbackReply,
		"entity_type":     "chat_session",
		"entity_id":       sessionId.String(),
	})
}

func (p *BusPublisher) PublishSessionDeleted(ctx context.Context, sessionId uuid.UUID, ownerId string, messagesDeleted int64) {
	p.publish(ctx, constant.EventChatSessionDeleted, map[string]interface{}{
		"chat_id":          sessionId.String(),
		"user_id":          ownerId,
		"messages_deleted": messagesDeleted,
		"entity_type":      "chat_session",
		"entity_id":        sessionId.String(),
	})
}

func (p *BusPublisher) PublishHistorySwept(ctx context.Context, ownerId, policy string, messagesDeleted, sessionsDeleted int64, cutoff time.Time) {
	p.publish(ctx, constant.EventChatHistorySwept, map[string]interface{}{
		"user_id":          ownerId,
		"policy":           policy,
		"messages_deleted": messagesDeleted,
		"sessions_deleted": sessionsDeleted,
		"cutoff":           cutoff.Format(time.RFC3339),
		"entity_type":      "user",
		"entity_id":        ownerId,
	})
}

func (p *BusPublisher) PublishRetentionUpdated(ctx context.Context, ownerId, previous, current string) {
	p.publish(ctx, constant.EventRetentionPolicyUpdated, map[string]interface{}{
		"user_id":            ownerId,
		"previous_retention": previous,
		"history_retention":  current,
		"entity_type":        "user",
		"entity_id":          ownerId,
	})
}
