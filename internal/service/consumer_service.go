package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/pkg/logger"
	"arogya-chat-be/internal/repository/memory"
	"arogya-chat-be/pkg/events"
	pktNats "arogya-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventSubscriber is satisfied by pkg/nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, inactiveThreshold time.Duration, handler pktNats.EventHandler) error
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	chatbot     IChatbotService
	policyCache *memory.RetentionPolicyCache
	events      EventSubscriber
	logger      logger.ILogger
}

// NewConsumerService runs sweep jobs from the in-process bus. When events is non-nil it also
// drops cached retention policies changed on other instances.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	chatbot IChatbotService,
	policyCache *memory.RetentionPolicyCache,
	events EventSubscriber,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		chatbot:     chatbot,
		policyCache: policyCache,
		events:      events,
		logger:      logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	if cs.events != nil {
		durable := fmt.Sprintf("retention-cache-%s", instanceName())
		if err := cs.events.Subscribe(ctx, constant.EventRetentionPolicyUpdated, durable, time.Hour, cs.handleRetentionUpdated); err != nil {
			// Local invalidation still happens on this instance
			cs.logger.Warn("EVENTS", "Retention policy subscription failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SweepJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserId == "" {
		cs.logger.Error("RETENTION", "Dropping malformed sweep job", map[string]interface{}{"message_id": msg.UUID})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	res, err := cs.chatbot.SweepExpired(ctx, payload.UserId)
	if err != nil {
		cs.logger.Error("RETENTION", "Background sweep failed", map[string]interface{}{
			"user_id": payload.UserId,
			"error":   err.Error(),
		})
		msg.Ack() // The scheduler re-enqueues on its next tick
		return
	}

	cs.logger.Debug("RETENTION", "Background sweep done", map[string]interface{}{
		"user_id":          res.UserId,
		"messages_deleted": res.MessagesDeleted,
		"sessions_deleted": res.SessionsDeleted,
	})
	msg.Ack()
}

func (cs *consumerService) handleRetentionUpdated(_ context.Context, event events.Event) error {
	userId, _ := event.Payload()["user_id"].(string)
	if userId != "" {
		cs.policyCache.Invalidate(userId)
	}
	return nil
}

func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "local"
	}
	return host
}
