package service

import (
	"context"
	"encoding/json"
	"time"

	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/pkg/logger"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type ISweepScheduler interface {
	// Run enqueues sweeps every interval until ctx ends.
	Run(ctx context.Context)
	// EnqueueAll publishes one sweep job per user with an expiring policy.
	EnqueueAll(ctx context.Context) (int, error)
}

type sweepScheduler struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  message.Publisher
	topicName  string
	interval   time.Duration
	logger     logger.ILogger
}

func NewSweepScheduler(uowFactory unitofwork.RepositoryFactory, publisher message.Publisher, topicName string, interval time.Duration, logger logger.ILogger) ISweepScheduler {
	return &sweepScheduler{
		uowFactory: uowFactory,
		publisher:  publisher,
		topicName:  topicName,
		interval:   interval,
		logger:     logger,
	}
}

func (s *sweepScheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.EnqueueAll(ctx)
			if err != nil {
				s.logger.Error("RETENTION", "Failed to enqueue sweeps", map[string]interface{}{"error": err.Error()})
				continue
			}
			s.logger.Debug("RETENTION", "Sweeps enqueued", map[string]interface{}{"users": n})
		}
	}
}

func (s *sweepScheduler) EnqueueAll(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().FindAll(ctx, specification.RetentionEnabled{})
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, user := range users {
		payload, err := json.Marshal(dto.SweepJobMessage{UserId: user.Id})
		if err != nil {
			return enqueued, err
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := s.publisher.Publish(s.topicName, msg); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}
