package service

import (
	"context"

	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/internal/pkg/logger"
	"arogya-chat-be/internal/repository/memory"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"
	chatEvents "arogya-chat-be/pkg/chat/events"
)

type IUserService interface {
	UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.UserSettingsResponse, error)
}

type userService struct {
	uowFactory  unitofwork.RepositoryFactory
	policyCache *memory.RetentionPolicyCache
	publisher   chatEvents.Publisher
	logger      logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, policyCache *memory.RetentionPolicyCache, publisher chatEvents.Publisher, logger logger.ILogger) IUserService {
	return &userService{
		uowFactory:  uowFactory,
		policyCache: policyCache,
		publisher:   publisher,
		logger:      logger,
	}
}

// UpdateSettings stores a new retention policy. An empty policy leaves the current one in place.
func (s *userService) UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.UserSettingsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.UserByID{ID: req.UserId})
	if err != nil {
		return nil, apperror.StoreFailure("load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	previous := user.HistoryRetention
	if req.HistoryRetention != "" {
		policy := entity.RetentionPolicy(req.HistoryRetention)
		if !policy.IsValid() {
			return nil, apperror.Validation("invalid history retention")
		}
		user.HistoryRetention = policy
	}

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, apperror.StoreFailure("save user settings", err)
	}
	s.policyCache.Invalidate(user.Id)

	if previous != user.HistoryRetention {
		s.logger.Info("USER", "History retention updated", map[string]interface{}{
			"user_id":  user.Id,
			"previous": string(previous),
			"current":  string(user.HistoryRetention),
		})
		s.publisher.PublishRetentionUpdated(ctx, user.Id, string(previous), string(user.HistoryRetention))
	}

	return &dto.UserSettingsResponse{
		Id:               user.Id,
		Name:             user.Name,
		Email:            user.Email,
		HistoryRetention: string(user.HistoryRetention),
	}, nil
}
