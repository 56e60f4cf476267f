// Package retention applies a user's history retention policy.
package retention

import (
	"context"
	"time"

	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Result struct {
	MessagesDeleted int64
	SessionsDeleted int64
	Skipped         bool // Policy never expires, nothing was touched
	Cutoff          time.Time
}

type Sweeper struct{}

func NewSweeper() *Sweeper {
	return &Sweeper{}
}

// Sweep deletes the owner's messages older than the policy window, then every owned session left without messages.
// Sessions that never held a message are removed too.
func (s *Sweeper) Sweep(ctx context.Context, uow unitofwork.UnitOfWork, ownerId string, policy entity.RetentionPolicy, now time.Time) (Result, error) {
	cutoff, ok := policy.Cutoff(now)
	if !ok {
		return Result{Skipped: true}, nil
	}
	result := Result{Cutoff: cutoff}

	deleted, err := uow.ChatMessageRepository().DeleteByUserIdBefore(ctx, ownerId, cutoff)
	if err != nil {
		return result, err
	}
	result.MessagesDeleted = deleted

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.UserOwnedBy{UserID: ownerId})
	if err != nil {
		return result, err
	}
	if len(sessions) == 0 {
		return result, nil
	}

	owned := make([]uuid.UUID, len(sessions))
	for i, session := range sessions {
		owned[i] = session.Id
	}

	active, err := uow.ChatMessageRepository().FindDistinctSessionIds(ctx, specification.ByChatSessionIDs{ChatSessionIDs: owned})
	if err != nil {
		return result, err
	}

	empty := emptySessions(owned, active)
	if len(empty) == 0 {
		return result, nil
	}

	removed, err := uow.ChatSessionRepository().DeleteByIds(ctx, empty)
	if err != nil {
		return result, err
	}
	result.SessionsDeleted = removed

	return result, nil
}

func emptySessions(owned, active []uuid.UUID) []uuid.UUID {
	activeSet := make(map[uuid.UUID]struct{}, len(active))
	for _, id := range active {
		activeSet[id] = struct{}{}
	}

	var empty []uuid.UUID
	for _, id := range owned {
		if _, ok := activeSet[id]; !ok {
			empty = append(empty, id)
		}
	}
	return empty
}
