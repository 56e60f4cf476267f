package service

import (
	"context"
	"strings"
	"time"

	"arogya-chat-be/internal/constant"
	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/internal/pkg/logger"
	"arogya-chat-be/internal/repository/memory"
	"arogya-chat-be/internal/repository/scope"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"
	chatEvents "arogya-chat-be/pkg/chat/events"
	"arogya-chat-be/pkg/chat/history"
	"arogya-chat-be/pkg/chat/message"
	"arogya-chat-be/pkg/chat/retention"
	"arogya-chat-be/pkg/chat/session"
	"arogya-chat-be/pkg/chat/title"
	"arogya-chat-be/pkg/llm/completion"

	"github.com/google/uuid"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	SendMessage(ctx context.Context, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetHistory(ctx context.Context, userId string) ([]*dto.SessionResponse, error)
	SweepExpired(ctx context.Context, userId string) (*dto.SweepResponse, error)
	CreateSession(ctx context.Context, userId string) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionId uuid.UUID) (*dto.GetSessionResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type ChatbotOption func(*chatbotService)

// WithClock replaces time.Now. Times are stored in UTC regardless.
func WithClock(now func() time.Time) ChatbotOption {
	return func(cs *chatbotService) {
		cs.now = func() time.Time { return now().UTC() }
	}
}

// chatbotService coordinates domain components
type chatbotService struct {
	uowFactory  unitofwork.RepositoryFactory
	completion  *completion.Client
	policyCache *memory.RetentionPolicyCache
	publisher   chatEvents.Publisher
	logger      logger.ILogger
	now         func() time.Time

	// Domain components
	sessionManager *session.Manager
	messageFactory *message.Factory
	assembler      *history.Assembler
	titles         *title.Generator
	sweeper        *retention.Sweeper
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	completionClient *completion.Client,
	titles *title.Generator,
	policyCache *memory.RetentionPolicyCache,
	publisher chatEvents.Publisher,
	logger logger.ILogger,
	opts ...ChatbotOption,
) IChatbotService {
	cs := &chatbotService{
		uowFactory:  uowFactory,
		completion:  completionClient,
		policyCache: policyCache,
		publisher:   publisher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },

		sessionManager: session.NewManager(),
		messageFactory: message.NewFactory(),
		assembler:      history.NewAssembler(),
		titles:         titles,
		sweeper:        retention.NewSweeper(),
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// SendMessage runs one chat turn. The user's message is stored before the model is called,
// and a provider failure is answered with a stored apology instead of an error.
func (cs *chatbotService) SendMessage(ctx context.Context, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	// Steps already persisted are kept even if the client goes away
	ctx = context.WithoutCancel(ctx)

	content := request.Message
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("message is required")
	}
	ref, err := session.ParseRef(request.ChatId)
	if err != nil {
		return nil, err
	}
	ownerId := request.UserId
	if ownerId == "" {
		ownerId = constant.GuestUserId
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// 1. Resolve session
	resolved, err := cs.sessionManager.Resolve(ctx, uow, ref, ownerId, cs.now())
	if err != nil {
		return nil, apperror.StoreFailure("resolve chat session", err)
	}
	chatSession := resolved.Session

	// 2. Persist user message
	userMessage := cs.messageFactory.CreateUserMessage(chatSession.Id, ownerId, content, cs.now())
	if err := cs.messageFactory.Save(ctx, uow, userMessage); err != nil {
		return nil, apperror.StoreFailure("save user message", err)
	}

	// 3. Title, best-effort
	if resolved.Created || resolved.PriorMessages <= constant.TitleRefreshMaxMessages {
		res := cs.titles.Generate(ctx, content)
		if res.Fallback {
			details := map[string]interface{}{"chat_id": chatSession.Id.String()}
			if res.Err != nil {
				details["error"] = res.Err.Error()
			}
			cs.logger.Warn("TITLE", "Title generation fell back to truncation", details)
		}
		if err := cs.sessionManager.UpdateTitle(ctx, uow, chatSession, res.Title); err != nil {
			return nil, apperror.StoreFailure("save chat title", err)
		}
	}

	// 4. Context window
	contextWindow, err := cs.assembler.Assemble(ctx, uow, chatSession.Id, resolved.PriorMessages == 0)
	if err != nil {
		return nil, apperror.StoreFailure("load conversation context", err)
	}

	// 5. Completion, with fallback
	reply, err := cs.completion.Complete(ctx, contextWindow, constant.HealthSystemPrompt)
	fallback := false
	if err != nil {
		cs.logger.Error("LLM", "Completion failed, storing fallback reply", map[string]interface{}{
			"chat_id": chatSession.Id.String(),
			"error":   err.Error(),
		})
		reply = constant.ReplyUnavailable
		fallback = true
	}

	// 6. Persist model message
	modelMessage := cs.messageFactory.CreateModelMessage(chatSession.Id, reply, userMessage.CreatedAt, cs.now())
	if err := cs.messageFactory.Save(ctx, uow, modelMessage); err != nil {
		return nil, apperror.StoreFailure("save model message", err)
	}

	// 7. Refresh activity
	touchedAt := cs.now()
	if touchedAt.Before(modelMessage.CreatedAt) {
		touchedAt = modelMessage.CreatedAt
	}
	if err := cs.sessionManager.Touch(ctx, uow, chatSession, touchedAt); err != nil {
		return nil, apperror.StoreFailure("refresh chat session", err)
	}

	cs.publisher.PublishMessageSent(ctx, chatSession.Id, ownerId, resolved.Created, fallback)

	return &dto.SendMessageResponse{
		Reply:  reply,
		ChatId: chatSession.Id,
		Title:  chatSession.Title,
	}, nil
}

// GetHistory sweeps expired history first, then lists what is left, most recently active first.
func (cs *chatbotService) GetHistory(ctx context.Context, userId string) ([]*dto.SessionResponse, error) {
	if _, err := cs.SweepExpired(ctx, userId); err != nil {
		return nil, err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Scope(scope.OrderByActivity),
	)
	if err != nil {
		return nil, apperror.StoreFailure("list chat sessions", err)
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, toSessionResponse(s))
	}
	return res, nil
}

// SweepExpired applies the user's retention policy. Unknown users and the "off" policy are skipped.
func (cs *chatbotService) SweepExpired(ctx context.Context, userId string) (*dto.SweepResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	policy, err := cs.retentionPolicy(ctx, uow, userId)
	if err != nil {
		return nil, apperror.StoreFailure("load retention policy", err)
	}

	result, err := cs.sweeper.Sweep(ctx, uow, userId, policy, cs.now())
	if err != nil {
		return nil, apperror.StoreFailure("sweep expired history", err)
	}

	if result.MessagesDeleted > 0 || result.SessionsDeleted > 0 {
		cs.logger.Info("RETENTION", "Expired history removed", map[string]interface{}{
			"user_id":          userId,
			"policy":           string(policy),
			"messages_deleted": result.MessagesDeleted,
			"sessions_deleted": result.SessionsDeleted,
		})
		cs.publisher.PublishHistorySwept(ctx, userId, string(policy), result.MessagesDeleted, result.SessionsDeleted, result.Cutoff)
	}

	return &dto.SweepResponse{
		UserId:          userId,
		MessagesDeleted: result.MessagesDeleted,
		SessionsDeleted: result.SessionsDeleted,
		Skipped:         result.Skipped,
		Cutoff:          result.Cutoff,
	}, nil
}

func (cs *chatbotService) retentionPolicy(ctx context.Context, uow unitofwork.UnitOfWork, userId string) (entity.RetentionPolicy, error) {
	if policy, ok := cs.policyCache.Get(userId); ok {
		return policy, nil
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.UserByID{ID: userId})
	if err != nil {
		return "", err
	}

	policy := entity.DefaultRetention
	if user != nil {
		policy = user.HistoryRetention
	}
	cs.policyCache.Set(userId, policy)
	return policy, nil
}

func (cs *chatbotService) CreateSession(ctx context.Context, userId string) (*dto.SessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.sessionManager.Create(ctx, uow, userId, cs.now())
	if err != nil {
		return nil, apperror.StoreFailure("create chat session", err)
	}
	return toSessionResponse(chatSession), nil
}

func (cs *chatbotService) GetSession(ctx context.Context, sessionId uuid.UUID) (*dto.GetSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, apperror.StoreFailure("load chat session", err)
	}
	if chatSession == nil {
		return nil, apperror.NotFound("Chat not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.Scope(scope.OrderByCreatedAsc),
	)
	if err != nil {
		return nil, apperror.StoreFailure("load chat messages", err)
	}

	res := &dto.GetSessionResponse{
		SessionResponse: *toSessionResponse(chatSession),
		Messages:        make([]*dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, &dto.MessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return res, nil
}

// DeleteSession removes the session and all of its messages in one transaction.
func (cs *chatbotService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperror.StoreFailure("begin delete", err)
	}
	defer uow.Rollback()

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return apperror.StoreFailure("load chat session", err)
	}
	if chatSession == nil {
		return apperror.NotFound("Chat not found")
	}

	deleted, err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId)
	if err != nil {
		return apperror.StoreFailure("delete chat messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.StoreFailure("delete chat session", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.StoreFailure("commit delete", err)
	}

	cs.publisher.PublishSessionDeleted(ctx, sessionId, chatSession.UserId, deleted)
	return nil
}

func toSessionResponse(s *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
